package repository

import (
	"context"
	"database/sql"

	"asfalto/internal/db"
	"asfalto/internal/live"
	"asfalto/internal/models"
)

// postReads are the tables every post query joins.
var postReads = []live.Table{live.Posts, live.Users, live.Likes}

type PostRepository interface {
	GetAll() *live.Query[[]models.Post]
	GetByCategory(category models.Category) *live.Query[[]models.Post]
	GetByAuthorEmail(email string) *live.Query[[]models.Post]
	// Search matches query against title or summary, ignoring case.
	Search(query string) *live.Query[[]models.Post]
	// Get returns nil when no post has id.
	Get(ctx context.Context, id string) (*models.Post, error)
	// GetRow returns the stored row without checking its category, so posts
	// with a corrupt category can still be inspected and removed.
	GetRow(ctx context.Context, id string) (*models.PostWithDetails, error)
	// Create stores post under a fresh id, published now, and returns the id.
	Create(ctx context.Context, post models.Post, authorEmail string) (string, error)
	// Delete removes the post with its comments and likes.
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type postRepository struct {
	store *db.Store
	opts  options
}

func NewPostRepository(store *db.Store, opts ...Option) PostRepository {
	return &postRepository{store: store, opts: buildOptions(opts)}
}

func (r *postRepository) list(f models.PostFilter) *live.Query[[]models.Post] {
	rows := live.NewQuery(r.store.Hub(), func(ctx context.Context) ([]models.PostWithDetails, error) {
		return models.ListPosts(ctx, r.store.DB, f)
	}, postReads...)
	return live.Map(rows, toPosts)
}

func toPosts(rows []models.PostWithDetails) ([]models.Post, error) {
	posts := make([]models.Post, 0, len(rows))
	for _, row := range rows {
		p, err := row.ToDomain()
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func (r *postRepository) GetAll() *live.Query[[]models.Post] {
	return r.list(models.PostFilter{})
}

func (r *postRepository) GetByCategory(category models.Category) *live.Query[[]models.Post] {
	c := string(category)
	return r.list(models.PostFilter{Category: &c})
}

func (r *postRepository) GetByAuthorEmail(email string) *live.Query[[]models.Post] {
	return r.list(models.PostFilter{AuthorEmail: &email})
}

func (r *postRepository) Search(query string) *live.Query[[]models.Post] {
	return r.list(models.PostFilter{Search: &query})
}

func (r *postRepository) Get(ctx context.Context, id string) (*models.Post, error) {
	row, err := models.GetPost(ctx, r.store.DB, id)
	if err != nil || row == nil {
		return nil, err
	}
	p, err := row.ToDomain()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) GetRow(ctx context.Context, id string) (*models.PostWithDetails, error) {
	return models.GetPost(ctx, r.store.DB, id)
}

func (r *postRepository) Create(ctx context.Context, post models.Post, authorEmail string) (string, error) {
	post.ID = r.opts.newID()
	post.PublishedAt = r.opts.millis()

	err := r.store.Write(ctx, []live.Table{live.Posts}, func(tx *sql.Tx) error {
		author, err := models.GetUserByEmail(ctx, tx, authorEmail)
		if err != nil {
			return err
		}
		if author == nil {
			return models.ErrAuthorNotFound
		}
		return models.UpsertPost(ctx, tx, post.Record(author.ID))
	})
	if err != nil {
		return "", err
	}
	return post.ID, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.store.Write(ctx, []live.Table{live.Posts, live.Comments, live.Likes}, func(tx *sql.Tx) error {
		return models.DeletePost(ctx, tx, id)
	})
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	return models.CountPosts(ctx, r.store.DB)
}
