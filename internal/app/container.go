// Package app wires the store, repositories and device services together and
// exposes the session operations a front end calls.
package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"asfalto/internal/auth"
	"asfalto/internal/config"
	"asfalto/internal/db"
	"asfalto/internal/media"
	"asfalto/internal/models"
	"asfalto/internal/prefs"
	"asfalto/internal/repository"
	"asfalto/internal/seed"
)

const prefsKey = "asfaltofashion_prefs"

type Repositories struct {
	Users    repository.UserRepository
	Posts    repository.PostRepository
	Comments repository.CommentRepository
	Likes    repository.LikeRepository
}

// Container lazily builds the process-wide services. Each is created once on
// first use and shared afterwards.
type Container struct {
	cfg    *config.Config
	hasher *auth.Hasher
	opts   []repository.Option

	storeOnce sync.Once
	store     *db.Store
	repos     *Repositories
	storeErr  error

	prefsOnce sync.Once
	prefs     prefs.Store
	prefsErr  error

	imagesOnce sync.Once
	images     media.Store
	imagesErr  error
}

func NewContainer(cfg *config.Config, opts ...repository.Option) *Container {
	return &Container{
		cfg:    cfg,
		hasher: auth.NewHasher(cfg.BcryptCost),
		opts:   opts,
	}
}

func (c *Container) open(ctx context.Context) {
	store, err := db.Open(ctx, db.Options{Path: c.cfg.DBPath, BusyTimeout: c.cfg.BusyTimeout})
	if err != nil {
		c.storeErr = err
		return
	}
	if c.cfg.Seed {
		if err := c.seed(ctx, store); err != nil {
			store.Close()
			c.storeErr = err
			return
		}
	}

	c.store = store
	c.repos = &Repositories{
		Users:    repository.NewUserRepository(store, c.hasher),
		Posts:    repository.NewPostRepository(store, c.opts...),
		Comments: repository.NewCommentRepository(store, c.opts...),
		Likes:    repository.NewLikeRepository(store, c.opts...),
	}
}

// seed fills a store that has no users yet. Checking the users table rather
// than Created lets a store whose first seeding failed be seeded on the next open.
func (c *Container) seed(ctx context.Context, store *db.Store) error {
	n, err := models.CountUsers(ctx, store.DB)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return seed.Run(ctx, store, c.hasher, time.Now())
}

// Store opens the database on first call, seeding it if it has no users.
func (c *Container) Store(ctx context.Context) (*db.Store, error) {
	c.storeOnce.Do(func() { c.open(ctx) })
	return c.store, c.storeErr
}

func (c *Container) Repositories(ctx context.Context) (*Repositories, error) {
	if _, err := c.Store(ctx); err != nil {
		return nil, err
	}
	return c.repos, nil
}

// Preferences uses Redis when REDIS_URL is set and the prefs file otherwise.
func (c *Container) Preferences(ctx context.Context) (prefs.Store, error) {
	c.prefsOnce.Do(func() {
		if c.cfg.RedisURL == "" {
			c.prefs = prefs.NewFileStore(c.cfg.PrefsPath)
			return
		}
		rs, err := prefs.OpenRedisStore(ctx, c.cfg.RedisURL, prefsKey)
		if err != nil {
			c.prefsErr = err
			return
		}
		c.prefs = rs
	})
	return c.prefs, c.prefsErr
}

// Images uses Cloudinary when CLOUDINARY_URL is set and the images directory otherwise.
func (c *Container) Images() (media.Store, error) {
	c.imagesOnce.Do(func() {
		if c.cfg.CloudinaryURL == "" {
			local, err := media.NewLocalStore(c.cfg.ImagesDir)
			if err != nil {
				c.imagesErr = err
				return
			}
			c.images = local
			return
		}
		cld, err := media.NewCloudinaryStore(c.cfg.CloudinaryURL, c.cfg.CloudinaryUploadFolder)
		if err != nil {
			c.imagesErr = err
			return
		}
		c.images = cld
	})
	return c.images, c.imagesErr
}

// Session builds a session over the shared services.
func (c *Container) Session(ctx context.Context) (*Session, error) {
	repos, err := c.Repositories(ctx)
	if err != nil {
		return nil, err
	}
	p, err := c.Preferences(ctx)
	if err != nil {
		return nil, err
	}
	images, err := c.Images()
	if err != nil {
		return nil, err
	}
	return NewSession(repos, p, images, c.hasher), nil
}

func (c *Container) Close() error {
	var errs []error
	if c.store != nil {
		errs = append(errs, c.store.Close())
	}
	if rs, ok := c.prefs.(*prefs.RedisStore); ok {
		errs = append(errs, rs.Close())
	}
	if err := errors.Join(errs...); err != nil {
		log.Printf("app: close: %v", err)
		return err
	}
	return nil
}
