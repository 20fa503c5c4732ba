package models

// Category tags a Post's topic. It is stored as its name.
type Category string

const (
	CategoryNoticias   Category = "NOTICIAS"
	CategoryTendencias Category = "TENDENCIAS"
	CategoryStreetwear Category = "STREETWEAR"
	CategoryEditorial  Category = "EDITORIAL"
)

// Categories lists every valid Category in display order.
var Categories = []Category{
	CategoryNoticias,
	CategoryTendencias,
	CategoryStreetwear,
	CategoryEditorial,
}

// ParseCategory maps stored text back to a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", &CategoryError{Value: s}
}

func (c Category) String() string {
	return string(c)
}

// User is a row of the users table. PasswordHash is never plaintext.
type User struct {
	ID               int64
	Name             string
	Email            string
	Phone            string
	PasswordHash     string
	ProfileImagePath *string
	IsAdmin          bool
}

// PostRecord is a row of the posts table.
type PostRecord struct {
	ID          string
	Title       string
	Summary     string
	Content     string
	Category    string
	AuthorID    int64
	PublishedAt int64
	ImageURL    *string
}

// PostWithDetails is a post joined with its author and live like count.
type PostWithDetails struct {
	PostRecord
	AuthorName            string
	AuthorEmail           string
	AuthorProfileImageURL *string
	LikesCount            int
}

// Post is the public shape of a post.
type Post struct {
	ID                    string
	Title                 string
	Summary               string
	Content               string
	Category              Category
	AuthorID              int64
	AuthorName            string
	AuthorEmail           string
	AuthorProfileImageURL *string
	PublishedAt           int64
	Likes                 int
	ImageURL              *string
}

// ToDomain converts the joined row, validating its category.
func (p PostWithDetails) ToDomain() (Post, error) {
	category, err := ParseCategory(p.Category)
	if err != nil {
		return Post{}, err
	}
	return Post{
		ID:                    p.ID,
		Title:                 p.Title,
		Summary:               p.Summary,
		Content:               p.Content,
		Category:              category,
		AuthorID:              p.AuthorID,
		AuthorName:            p.AuthorName,
		AuthorEmail:           p.AuthorEmail,
		AuthorProfileImageURL: p.AuthorProfileImageURL,
		PublishedAt:           p.PublishedAt,
		Likes:                 p.LikesCount,
		ImageURL:              p.ImageURL,
	}, nil
}

// Record returns the storable part of p, owned by authorID.
func (p Post) Record(authorID int64) PostRecord {
	return PostRecord{
		ID:          p.ID,
		Title:       p.Title,
		Summary:     p.Summary,
		Content:     p.Content,
		Category:    string(p.Category),
		AuthorID:    authorID,
		PublishedAt: p.PublishedAt,
		ImageURL:    p.ImageURL,
	}
}

// CommentRecord is a row of the comments table.
type CommentRecord struct {
	ID        string
	PostID    string
	AuthorID  int64
	Content   string
	Timestamp int64
}

// CommentWithAuthor is a comment joined with its author.
type CommentWithAuthor struct {
	CommentRecord
	AuthorName            string
	AuthorEmail           string
	AuthorProfileImageURL *string
}

// Comment is the public shape of a comment.
type Comment struct {
	ID                    string
	PostID                string
	AuthorID              int64
	AuthorName            string
	AuthorEmail           string
	AuthorProfileImageURL *string
	Content               string
	Timestamp             int64
}

func (c CommentWithAuthor) ToDomain() Comment {
	return Comment{
		ID:                    c.ID,
		PostID:                c.PostID,
		AuthorID:              c.AuthorID,
		AuthorName:            c.AuthorName,
		AuthorEmail:           c.AuthorEmail,
		AuthorProfileImageURL: c.AuthorProfileImageURL,
		Content:               c.Content,
		Timestamp:             c.Timestamp,
	}
}

// LikeRecord is a row of the likes table.
type LikeRecord struct {
	PostID    string
	UserEmail string
	Timestamp int64
}

// LikeWithUser is a like joined with the liking user.
type LikeWithUser struct {
	LikeRecord
	UserName            string
	UserProfileImageURL *string
}

// Like is the public shape of a like.
type Like struct {
	PostID              string
	UserEmail           string
	UserName            string
	UserProfileImageURL *string
	Timestamp           int64
}

func (l LikeWithUser) ToDomain() Like {
	return Like{
		PostID:              l.PostID,
		UserEmail:           l.UserEmail,
		UserName:            l.UserName,
		UserProfileImageURL: l.UserProfileImageURL,
		Timestamp:           l.Timestamp,
	}
}
