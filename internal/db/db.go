// Package db owns the SQLite entity store: schema, connections and the
// serialized write path that feeds live-query invalidation.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"asfalto/internal/live"
)

// DriverName is the database/sql driver registered with the store's SQL functions.
const DriverName = "sqlite3_asfalto"

//go:embed schema.sql
var schemaFS embed.FS

func init() {
	sql.Register(DriverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("contains_fold", containsFold, true)
		},
	})
}

// containsFold backs case-insensitive "contains" search beyond ASCII, which LIKE does not cover.
func containsFold(haystack, needle string) int64 {
	if strings.Contains(strings.ToLower(haystack), strings.ToLower(needle)) {
		return 1
	}
	return 0
}

// Options configures Open.
type Options struct {
	Path        string
	BusyTimeout time.Duration
}

// Store is the process-wide handle on the relational store.
type Store struct {
	DB *sql.DB

	hub     *live.Hub
	write   sync.Mutex
	created bool
	memory  bool
}

// Open opens (creating if needed) the database at opts.Path and applies the schema.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = 5 * time.Second
	}

	memory := opts.Path == ":memory:"
	if !memory {
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
			return nil, err
		}
	}

	dsn := fmt.Sprintf("%s?_foreign_keys=on&_busy_timeout=%d", opts.Path, opts.BusyTimeout.Milliseconds())
	if !memory {
		dsn = "file:" + dsn + "&_journal_mode=WAL"
	}
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, err
	}
	if memory {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	created, err := migrate(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	if created {
		log.Printf("db: created schema at %s", opts.Path)
	}

	return &Store{DB: db, hub: live.NewHub(), created: created, memory: memory}, nil
}

func migrate(ctx context.Context, db *sql.DB) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'users'`).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("inspect schema: %w", err)
	}

	sqlBytes, err := fs.ReadFile(schemaFS, "schema.sql")
	if err != nil {
		return false, err
	}
	if _, err := db.ExecContext(ctx, string(sqlBytes)); err != nil {
		return false, fmt.Errorf("apply schema: %w", err)
	}
	return n == 0, nil
}

// Created reports whether Open created the schema, i.e. the store is brand new.
func (s *Store) Created() bool {
	return s.created
}

// Hub returns the invalidation hub live queries subscribe to.
func (s *Store) Hub() *live.Hub {
	return s.hub
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Write runs fn in a single transaction. Writers are serialized, and once the
// transaction commits every live query reading one of tables is invalidated.
// Nothing is notified when fn or the commit fails.
func (s *Store) Write(ctx context.Context, tables []live.Table, fn func(tx *sql.Tx) error) error {
	s.write.Lock()
	err := s.inTx(ctx, fn)
	s.write.Unlock()
	if err != nil {
		return err
	}

	s.hub.Notify(tables...)
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Follow polls the database every interval and invalidates every live query
// when another connection or process has committed since the last poll. It
// blocks until ctx is done. In-memory stores have no other writers, so Follow
// just waits. The interval must be positive.
func (s *Store) Follow(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("follow: poll interval must be positive, got %s", interval)
	}
	if s.memory {
		<-ctx.Done()
		return nil
	}

	// data_version is only meaningful on one connection.
	conn, err := s.DB.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	version := func() (int64, error) {
		var v int64
		err := conn.QueryRowContext(ctx, `PRAGMA data_version`).Scan(&v)
		return v, err
	}
	last, err := version()
	if err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		v, err := version()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("poll data_version: %w", err)
		}
		if v != last {
			last = v
			s.hub.Notify(live.AllTables...)
		}
	}
}
