package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"asfalto/internal/auth"
	"asfalto/internal/media"
	"asfalto/internal/models"
	"asfalto/internal/prefs"
	"asfalto/internal/validate"
)

var (
	ErrIncompleteFields = errors.New("title, summary and content are required")
	ErrNotLoggedIn      = errors.New("not logged in")
	ErrForbidden        = errors.New("only the author or an admin may do that")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// Session is one device's signed-in state on top of the repositories.
type Session struct {
	repos     *Repositories
	prefs     prefs.Store
	images    media.Store
	hasher    *auth.Hasher
	validator *validate.Validator

	mu   sync.RWMutex
	user *models.User
}

func NewSession(repos *Repositories, p prefs.Store, images media.Store, hasher *auth.Hasher) *Session {
	return &Session{
		repos:     repos,
		prefs:     p,
		images:    images,
		hasher:    hasher,
		validator: validate.New(),
	}
}

// User returns the signed-in user, or nil.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

func (s *Session) setUser(u *models.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

func (s *Session) requireUser() (*models.User, error) {
	u := s.User()
	if u == nil {
		return nil, ErrNotLoggedIn
	}
	return u, nil
}

// Register validates in and stores a new account. It does not sign in.
func (s *Session) Register(ctx context.Context, in validate.Registration) (int64, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := s.validator.Struct(in); err != nil {
		return 0, err
	}
	return s.repos.Users.Register(ctx, in.Name, in.Email, in.Phone, in.Password)
}

// Login rejects passwords that could never have been registered before
// checking credentials, then remembers the email.
func (s *Session) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if !s.validator.Email(email) {
		return nil, validate.Errors{{Field: "Email", Message: "must be a valid email"}}
	}
	if !validate.StrongPassword(password) {
		return nil, validate.Errors{{Field: "Password", Message: "must be at least 8 characters with upper, lower, digit and symbol"}}
	}

	u, err := s.repos.Users.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.prefs.SaveLogin(ctx, u.Email); err != nil {
		return nil, err
	}
	s.setUser(u)
	return u, nil
}

// Restore signs the remembered user back in. It returns nil when nobody was
// signed in or the account no longer exists.
func (s *Session) Restore(ctx context.Context) (*models.User, error) {
	p, err := s.prefs.Load(ctx)
	if err != nil {
		return nil, err
	}
	if !p.LoggedIn || p.LastEmail == nil {
		return nil, nil
	}
	u, err := s.repos.Users.FindByEmail(ctx, *p.LastEmail)
	if err != nil {
		return nil, err
	}
	s.setUser(u)
	return u, nil
}

func (s *Session) Logout(ctx context.Context) error {
	s.setUser(nil)
	return s.prefs.ClearLogin(ctx)
}

// ProfileUpdate is a profile edit. An empty Password keeps the current one and
// an empty Image keeps the current picture.
type ProfileUpdate struct {
	validate.Profile
	Image string
}

func (s *Session) UpdateProfile(ctx context.Context, in ProfileUpdate) (*models.User, error) {
	current, err := s.requireUser()
	if err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Password != "" && in.Password != in.Confirm {
		return nil, ErrPasswordMismatch
	}
	if err := s.validator.Struct(in.Profile); err != nil {
		return nil, err
	}

	updated := *current
	updated.Name = in.Name
	updated.Phone = in.Phone
	if in.Password != "" {
		updated.PasswordHash, err = s.hasher.Hash(in.Password)
		if err != nil {
			return nil, err
		}
	}
	if in.Image != "" {
		ref, err := media.SaveFile(ctx, s.images, in.Image)
		if err != nil {
			return nil, err
		}
		updated.ProfileImagePath = &ref
	}

	if err := s.repos.Users.Update(ctx, &updated); err != nil {
		return nil, err
	}
	s.setUser(&updated)
	return &updated, nil
}

// NewPost is the input of CreatePost. Image is an optional local file.
type NewPost struct {
	Title    string
	Summary  string
	Content  string
	Category models.Category
	Image    string
}

func (s *Session) CreatePost(ctx context.Context, in NewPost) (string, error) {
	u, err := s.requireUser()
	if err != nil {
		return "", err
	}

	post := models.Post{
		Title:    s.validator.PlainText(in.Title),
		Summary:  s.validator.PlainText(in.Summary),
		Content:  s.validator.PlainText(in.Content),
		Category: in.Category,
	}
	if post.Title == "" || post.Summary == "" || post.Content == "" {
		return "", ErrIncompleteFields
	}
	if _, err := models.ParseCategory(string(in.Category)); err != nil {
		return "", err
	}
	if in.Image != "" {
		ref, err := media.SaveFile(ctx, s.images, in.Image)
		if err != nil {
			return "", err
		}
		post.ImageURL = &ref
	}

	return s.repos.Posts.Create(ctx, post, u.Email)
}

// AddComment ignores blank content and returns an empty id for it.
func (s *Session) AddComment(ctx context.Context, postID, content string) (string, error) {
	u, err := s.requireUser()
	if err != nil {
		return "", err
	}
	content = s.validator.PlainText(content)
	if content == "" {
		return "", nil
	}
	return s.repos.Comments.AddComment(ctx, postID, u.ID, content)
}

func (s *Session) ToggleLike(ctx context.Context, postID string) (bool, error) {
	u, err := s.requireUser()
	if err != nil {
		return false, err
	}
	return s.repos.Likes.ToggleLike(ctx, postID, u.Email)
}

func (s *Session) canModify(authorID int64) error {
	u, err := s.requireUser()
	if err != nil {
		return err
	}
	if u.ID != authorID && !u.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// DeletePost removes a post the user wrote, or any post for an admin.
// Deleting a missing post is a no-op.
func (s *Session) DeletePost(ctx context.Context, postID string) error {
	p, err := s.repos.Posts.GetRow(ctx, postID)
	if err != nil || p == nil {
		return err
	}
	if err := s.canModify(p.AuthorID); err != nil {
		return err
	}
	if err := s.repos.Posts.Delete(ctx, postID); err != nil {
		return err
	}
	if p.ImageURL != nil {
		if err := s.images.Delete(ctx, *p.ImageURL); err != nil {
			log.Printf("app: removing image of post %s: %v", postID, err)
		}
	}
	return nil
}

// DeleteComment removes a comment the user wrote, or any comment for an admin.
func (s *Session) DeleteComment(ctx context.Context, commentID string) error {
	c, err := s.repos.Comments.Get(ctx, commentID)
	if err != nil || c == nil {
		return err
	}
	if err := s.canModify(c.AuthorID); err != nil {
		return err
	}
	return s.repos.Comments.DeleteComment(ctx, commentID)
}

func (s *Session) Theme(ctx context.Context) (string, error) {
	p, err := s.prefs.Load(ctx)
	if err != nil {
		return "", err
	}
	return p.Theme, nil
}

func (s *Session) SetTheme(ctx context.Context, theme string) error {
	return s.prefs.SaveTheme(ctx, theme)
}
