package store

import (
	"errors"
	"fmt"

	"github.com/desertthunder/reelx/internal/shared"
)

const (
	FavoritesKey = "favoriteMovies"
	HistoryKey   = "watchHistory"
)

var (
	ErrQuotaExceeded      = errors.New("storage quota exceeded")
	ErrCorruptDocument    = errors.New("stored document is malformed")
	ErrUnsupportedVersion = errors.New("stored document version is not supported")
	ErrClosed             = errors.New("store is closed")
)

// Store is a synchronous string key-value store.
//
// Read reports ok=false for an absent key. Remove of an absent key is not an error.
type Store interface {
	Read(key string) (value string, ok bool, err error)
	Write(key, value string) error
	Remove(key string) error
}

// Closer is implemented by stores holding external resources.
type Closer interface {
	Close() error
}

// Open constructs the store selected by cfg.Driver.
func Open(cfg shared.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return OpenSQLite(cfg.Path, cfg.QuotaBytes)
	case "memory":
		return NewMemory(cfg.QuotaBytes), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", shared.ErrInvalidConfig, cfg.Driver)
	}
}

// Close releases s if it holds resources.
func Close(s Store) error {
	if c, ok := s.(Closer); ok {
		return c.Close()
	}
	return nil
}

// entrySize is the accounted size of a key-value pair.
func entrySize(key, value string) int64 {
	return int64(len(key) + len(value))
}
