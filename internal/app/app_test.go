package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"asfalto/internal/config"
	"asfalto/internal/models"
	"asfalto/internal/prefs"
	"asfalto/internal/seed"
	"asfalto/internal/validate"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		DBPath:     filepath.Join(dir, "asfaltofashion.db"),
		ImagesDir:  filepath.Join(dir, "images"),
		PrefsPath:  filepath.Join(dir, "prefs.env"),
		BcryptCost: bcrypt.MinCost,
		Seed:       true,
	}
}

func newSession(t *testing.T) (*Container, *Session) {
	t.Helper()
	c := NewContainer(testConfig(t))
	t.Cleanup(func() { c.Close() })
	s, err := c.Session(context.Background())
	require.NoError(t, err)
	return c, s
}

func registration(email string) validate.Registration {
	return validate.Registration{
		Name:     "Ana Pérez",
		Email:    email,
		Phone:    "56912345678",
		Password: "Str0ng!Pass",
		Confirm:  "Str0ng!Pass",
	}
}

func login(t *testing.T, s *Session, email, password string) *models.User {
	t.Helper()
	u, err := s.Login(context.Background(), email, password)
	require.NoError(t, err)
	return u
}

func TestContainerSeedsOnFirstOpenOnly(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	c := NewContainer(cfg)
	repos, err := c.Repositories(ctx)
	require.NoError(t, err)
	n, err := repos.Posts.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	again, err := c.Repositories(ctx)
	require.NoError(t, err)
	assert.Same(t, repos, again)

	posts, err := repos.Posts.GetAll().Get(ctx)
	require.NoError(t, err)
	require.NoError(t, repos.Posts.Delete(ctx, posts[0].ID))
	require.NoError(t, c.Close())

	reopened := NewContainer(cfg)
	defer reopened.Close()
	repos, err = reopened.Repositories(ctx)
	require.NoError(t, err)
	n, err = repos.Posts.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestContainerWithoutSeed(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Seed = false

	c := NewContainer(cfg)
	defer c.Close()
	repos, err := c.Repositories(ctx)
	require.NoError(t, err)
	n, err := repos.Users.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestContainerSeedsStoreLeftEmpty(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Seed = false

	c := NewContainer(cfg)
	_, err := c.Store(ctx)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	cfg.Seed = true
	reopened := NewContainer(cfg)
	defer reopened.Close()
	repos, err := reopened.Repositories(ctx)
	require.NoError(t, err)
	users, err := repos.Users.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, users)
	posts, err := repos.Posts.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, posts)
}

func TestContainerPreferencesDefaultToFile(t *testing.T) {
	c := NewContainer(testConfig(t))
	defer c.Close()
	p, err := c.Preferences(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &prefs.FileStore{}, p)
}

func TestRegisterValidation(t *testing.T) {
	_, s := newSession(t)
	ctx := context.Background()

	in := registration("a@x.com")
	in.Phone = "+569"
	in.Confirm = "other"
	_, err := s.Register(ctx, in)
	var verrs validate.Errors
	require.ErrorAs(t, err, &verrs)
	assert.NotNil(t, verrs.Field("Phone"))
	assert.NotNil(t, verrs.Field("Confirm"))

	_, err = s.Register(ctx, registration("a@x.com"))
	require.NoError(t, err)
	_, err = s.Register(ctx, registration(" a@x.com "))
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)
}

func TestLoginRestoreLogout(t *testing.T) {
	_, s := newSession(t)
	ctx := context.Background()
	_, err := s.Register(ctx, registration("a@x.com"))
	require.NoError(t, err)

	_, err = s.Login(ctx, "a@x.com", "weak")
	var verrs validate.Errors
	require.ErrorAs(t, err, &verrs)
	assert.NotNil(t, verrs.Field("Password"))

	_, err = s.Login(ctx, "a@x.com", "Wr0ng!Pass")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	assert.Nil(t, s.User())

	u := login(t, s, " a@x.com", "Str0ng!Pass")
	assert.Equal(t, "a@x.com", u.Email)
	assert.Equal(t, u, s.User())

	// A fresh session on the same device picks the user back up.
	fresh := NewSession(s.repos, s.prefs, s.images, s.hasher)
	restored, err := fresh.Restore(ctx)
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, u.ID, restored.ID)

	require.NoError(t, fresh.Logout(ctx))
	assert.Nil(t, fresh.User())
	restored, err = NewSession(s.repos, s.prefs, s.images, s.hasher).Restore(ctx)
	require.NoError(t, err)
	assert.Nil(t, restored)
}

func TestOperationsRequireLogin(t *testing.T) {
	_, s := newSession(t)
	ctx := context.Background()

	_, err := s.CreatePost(ctx, NewPost{Title: "t", Summary: "s", Content: "c", Category: models.CategoryEditorial})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = s.AddComment(ctx, "p", "hola")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = s.ToggleLike(ctx, "p")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = s.UpdateProfile(ctx, ProfileUpdate{})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestCreatePost(t *testing.T) {
	_, s := newSession(t)
	ctx := context.Background()
	login(t, s, seed.UserEmail, seed.UserPassword)

	_, err := s.CreatePost(ctx, NewPost{Title: "T1", Summary: "  ", Content: "c", Category: models.CategoryEditorial})
	assert.ErrorIs(t, err, ErrIncompleteFields)
	_, err = s.CreatePost(ctx, NewPost{Title: "<b></b>", Summary: "s", Content: "c", Category: models.CategoryEditorial})
	assert.ErrorIs(t, err, ErrIncompleteFields)
	_, err = s.CreatePost(ctx, NewPost{Title: "T1", Summary: "s", Content: "c", Category: "VINTAGE"})
	assert.ErrorIs(t, err, models.ErrCorruptCategory)

	img := filepath.Join(t.TempDir(), "look.jpg")
	require.NoError(t, os.WriteFile(img, []byte("pixels"), 0644))
	id, err := s.CreatePost(ctx, NewPost{
		Title:    "  <i>Capas</i> y texturas ",
		Summary:  "Resumen",
		Content:  "Contenido",
		Category: models.CategoryStreetwear,
		Image:    img,
	})
	require.NoError(t, err)

	p, err := s.repos.Posts.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Capas y texturas", p.Title)
	assert.Equal(t, seed.UserEmail, p.AuthorEmail)
	require.NotNil(t, p.ImageURL)
	data, err := os.ReadFile(*p.ImageURL)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))
}

func TestAddCommentIgnoresBlank(t *testing.T) {
	_, s := newSession(t)
	ctx := context.Background()
	login(t, s, seed.UserEmail, seed.UserPassword)
	posts, err := s.repos.Posts.GetAll().Get(ctx)
	require.NoError(t, err)
	postID := posts[0].ID

	id, err := s.AddComment(ctx, postID, "   ")
	require.NoError(t, err)
	assert.Empty(t, id)

	id, err = s.AddComment(ctx, postID, "Me encanta")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	n, err := s.repos.Comments.CountByPost(ctx, postID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestToggleLike(t *testing.T) {
	_, s := newSession(t)
	ctx := context.Background()
	login(t, s, seed.UserEmail, seed.UserPassword)
	posts, err := s.repos.Posts.GetAll().Get(ctx)
	require.NoError(t, err)

	liked, err := s.ToggleLike(ctx, posts[0].ID)
	require.NoError(t, err)
	assert.True(t, liked)
	liked, err = s.ToggleLike(ctx, posts[0].ID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestDeletePermissions(t *testing.T) {
	_, s := newSession(t)
	ctx := context.Background()

	// Joan may not delete the admin's post.
	login(t, s, seed.UserEmail, seed.UserPassword)
	posts, err := s.repos.Posts.GetByAuthorEmail(seed.AdminEmail).Get(ctx)
	require.NoError(t, err)
	adminPost := posts[0].ID
	assert.ErrorIs(t, s.DeletePost(ctx, adminPost), ErrForbidden)

	own, err := s.CreatePost(ctx, NewPost{Title: "T1", Summary: "s", Content: "c", Category: models.CategoryNoticias})
	require.NoError(t, err)
	comment, err := s.AddComment(ctx, adminPost, "hola")
	require.NoError(t, err)

	// The admin may delete anything.
	login(t, s, seed.AdminEmail, seed.AdminPassword)
	adminComment, err := s.AddComment(ctx, own, "desde admin")
	require.NoError(t, err)
	require.NoError(t, s.DeleteComment(ctx, comment))
	require.NoError(t, s.DeletePost(ctx, own))

	p, err := s.repos.Posts.Get(ctx, own)
	require.NoError(t, err)
	assert.Nil(t, p)
	c, err := s.repos.Comments.Get(ctx, adminComment)
	require.NoError(t, err)
	assert.Nil(t, c)

	// Joan may delete their own comment but not the admin's.
	login(t, s, seed.UserEmail, seed.UserPassword)
	mine, err := s.AddComment(ctx, adminPost, "mío")
	require.NoError(t, err)
	theirs, err := s.repos.Comments.AddComment(ctx, adminPost, 1, "del admin")
	require.NoError(t, err)
	assert.ErrorIs(t, s.DeleteComment(ctx, theirs), ErrForbidden)
	require.NoError(t, s.DeleteComment(ctx, mine))

	assert.NoError(t, s.DeletePost(ctx, "missing"))
}

func TestAdminDeletesPostWithCorruptCategory(t *testing.T) {
	c, s := newSession(t)
	ctx := context.Background()
	store, err := c.Store(ctx)
	require.NoError(t, err)

	posts, err := s.repos.Posts.GetAll().Get(ctx)
	require.NoError(t, err)
	id := posts[0].ID
	_, err = store.DB.ExecContext(ctx, `UPDATE posts SET category = 'VINTAGE' WHERE id = ?`, id)
	require.NoError(t, err)

	login(t, s, seed.UserEmail, seed.UserPassword)
	assert.ErrorIs(t, s.DeletePost(ctx, id), ErrForbidden)

	login(t, s, seed.AdminEmail, seed.AdminPassword)
	require.NoError(t, s.DeletePost(ctx, id))
	row, err := s.repos.Posts.GetRow(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestUpdateProfile(t *testing.T) {
	_, s := newSession(t)
	ctx := context.Background()
	login(t, s, seed.UserEmail, seed.UserPassword)

	_, err := s.UpdateProfile(ctx, ProfileUpdate{Profile: validate.Profile{
		Name: "Joan", Phone: "56912345678", Password: "Nuev0!Pass", Confirm: "Otra0!Pass",
	}})
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	_, err = s.UpdateProfile(ctx, ProfileUpdate{Profile: validate.Profile{Name: "Joan", Phone: "123"}})
	var verrs validate.Errors
	require.ErrorAs(t, err, &verrs)
	assert.NotNil(t, verrs.Field("Phone"))

	img := filepath.Join(t.TempDir(), "me.jpg")
	require.NoError(t, os.WriteFile(img, []byte("face"), 0644))
	u, err := s.UpdateProfile(ctx, ProfileUpdate{
		Profile: validate.Profile{Name: " Joan Pérez ", Phone: "56987654321", Password: "Nuev0!Pass", Confirm: "Nuev0!Pass"},
		Image:   img,
	})
	require.NoError(t, err)
	assert.Equal(t, "Joan Pérez", u.Name)
	require.NotNil(t, u.ProfileImagePath)

	_, err = s.Login(ctx, seed.UserEmail, seed.UserPassword)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	login(t, s, seed.UserEmail, "Nuev0!Pass")
}

func TestTheme(t *testing.T) {
	_, s := newSession(t)
	ctx := context.Background()

	theme, err := s.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, prefs.DefaultTheme, theme)

	require.NoError(t, s.SetTheme(ctx, "dark"))
	theme, err = s.Theme(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dark", theme)
}
