package store

import (
	"context"
	"errors"
)

// ErrQuotaExceeded is returned by SetItem when the write would exceed the store's capacity.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// DefaultQuotaBytes is the capacity of a store when none is configured.
const DefaultQuotaBytes = 5 * 1024 * 1024

// Store defines the interface for key-value string persistence.
type Store interface {
	// GetItem returns the value stored under key. ok is false if the key is absent.
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error

	// Lifecycle
	Close() error
}

// Option configures a Store implementation.
type Option func(*options)

type options struct {
	quota int64
}

// WithQuota caps the total size in bytes of all stored values. Zero or less disables the cap.
func WithQuota(bytes int64) Option {
	return func(o *options) {
		o.quota = bytes
	}
}

func buildOptions(opts []Option) options {
	o := options{quota: DefaultQuotaBytes}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
