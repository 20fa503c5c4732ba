// Package prefs keeps the small per-device session preferences: whether a
// user is logged in, which email was last used and the chosen theme.
package prefs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

const (
	keyLoggedIn  = "logged_in"
	keyLastEmail = "last_email"
	keyTheme     = "theme"

	DefaultTheme = "system"
)

// Preferences is a snapshot of the stored values. LastEmail is nil when unset.
type Preferences struct {
	LoggedIn  bool
	LastEmail *string
	Theme     string
}

type Store interface {
	Load(ctx context.Context) (Preferences, error)
	// SaveLogin marks email as logged in.
	SaveLogin(ctx context.Context, email string) error
	// ClearLogin removes the login flag and the last email.
	ClearLogin(ctx context.Context) error
	SaveTheme(ctx context.Context, theme string) error
}

func fromMap(m map[string]string) Preferences {
	p := Preferences{Theme: DefaultTheme}
	p.LoggedIn, _ = strconv.ParseBool(m[keyLoggedIn])
	if email, ok := m[keyLastEmail]; ok {
		p.LastEmail = &email
	}
	if theme, ok := m[keyTheme]; ok && theme != "" {
		p.Theme = theme
	}
	return p
}

// FileStore keeps preferences in a dotenv file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) read() (map[string]string, error) {
	m, err := godotenv.Read(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	return m, err
}

func (s *FileStore) edit(fn func(m map[string]string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read()
	if err != nil {
		return err
	}
	fn(m)
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	return godotenv.Write(m, s.path)
}

func (s *FileStore) Load(ctx context.Context) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.read()
	if err != nil {
		return Preferences{}, err
	}
	return fromMap(m), nil
}

func (s *FileStore) SaveLogin(ctx context.Context, email string) error {
	return s.edit(func(m map[string]string) {
		m[keyLoggedIn] = "true"
		m[keyLastEmail] = email
	})
}

func (s *FileStore) ClearLogin(ctx context.Context) error {
	return s.edit(func(m map[string]string) {
		delete(m, keyLoggedIn)
		delete(m, keyLastEmail)
	})
}

func (s *FileStore) SaveTheme(ctx context.Context, theme string) error {
	return s.edit(func(m map[string]string) {
		m[keyTheme] = theme
	})
}

// RedisStore keeps preferences in a single Redis hash.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore stores preferences under the hash key.
func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	return &RedisStore{rdb: rdb, key: key}
}

// OpenRedisStore connects to url, e.g. redis://localhost:6379/0.
func OpenRedisStore(ctx context.Context, url, key string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return NewRedisStore(rdb, key), nil
}

func (s *RedisStore) Load(ctx context.Context) (Preferences, error) {
	m, err := s.rdb.HGetAll(ctx, s.key).Result()
	if err != nil {
		return Preferences{}, err
	}
	return fromMap(m), nil
}

func (s *RedisStore) SaveLogin(ctx context.Context, email string) error {
	return s.rdb.HSet(ctx, s.key, keyLoggedIn, "true", keyLastEmail, email).Err()
}

func (s *RedisStore) ClearLogin(ctx context.Context) error {
	return s.rdb.HDel(ctx, s.key, keyLoggedIn, keyLastEmail).Err()
}

func (s *RedisStore) SaveTheme(ctx context.Context, theme string) error {
	return s.rdb.HSet(ctx, s.key, keyTheme, theme).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
