package repository

import (
	"context"
	"database/sql"

	"asfalto/internal/auth"
	"asfalto/internal/db"
	"asfalto/internal/live"
	"asfalto/internal/models"
)

// userWrites lists every table a users write can change: user rows are joined
// into all post, comment and like reads, and deletes cascade.
var userWrites = []live.Table{live.Users, live.Posts, live.Comments, live.Likes}

type UserRepository interface {
	// Register stores a new user and returns its id, or ErrDuplicateEmail.
	Register(ctx context.Context, name, email, phone, password string) (int64, error)
	// Login returns the user whose stored hash verifies password, or ErrInvalidCredentials.
	Login(ctx context.Context, email, password string) (*models.User, error)
	// Update replaces the whole row. PasswordHash is stored as given.
	Update(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id int64) error
}

type userRepository struct {
	store  *db.Store
	hasher *auth.Hasher
}

func NewUserRepository(store *db.Store, hasher *auth.Hasher) UserRepository {
	return &userRepository{store: store, hasher: hasher}
}

func (r *userRepository) Register(ctx context.Context, name, email, phone, password string) (int64, error) {
	hash, err := r.hasher.Hash(password)
	if err != nil {
		return 0, err
	}

	var id int64
	err = r.store.Write(ctx, []live.Table{live.Users}, func(tx *sql.Tx) error {
		var inserted bool
		id, inserted, err = models.InsertUser(ctx, tx, &models.User{
			Name:         name,
			Email:        email,
			Phone:        phone,
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}
		if !inserted {
			return models.ErrDuplicateEmail
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *userRepository) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := models.GetUserByEmail(ctx, r.store.DB, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		r.hasher.Burn(password)
		return nil, models.ErrInvalidCredentials
	}
	if !r.hasher.Verify(password, user.PasswordHash) {
		return nil, models.ErrInvalidCredentials
	}
	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.store.Write(ctx, userWrites, func(tx *sql.Tx) error {
		return models.UpdateUser(ctx, tx, user)
	})
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return models.GetUserByEmail(ctx, r.store.DB, email)
}

func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	return models.ListUsers(ctx, r.store.DB)
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	return models.CountUsers(ctx, r.store.DB)
}

// Delete removes the user with their posts, and those posts' comments and likes.
func (r *userRepository) Delete(ctx context.Context, id int64) error {
	return r.store.Write(ctx, userWrites, func(tx *sql.Tx) error {
		return models.DeleteUser(ctx, tx, id)
	})
}
