// Package repository is the only mutation entry point onto the store. Each
// repository adds one domain rule on top of raw storage.
package repository

import (
	"time"

	"github.com/google/uuid"
)

type options struct {
	now   func() time.Time
	newID func() string
}

// Option configures a repository.
type Option func(*options)

// WithClock sets the clock used for published and created timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDs sets the generator for post and comment ids.
func WithIDs(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) millis() int64 {
	return o.now().UnixMilli()
}
