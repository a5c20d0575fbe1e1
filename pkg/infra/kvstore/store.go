package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound reports that a key holds no value. Callers treat it as
// "no data" rather than an infrastructure failure.
var ErrNotFound = errors.New("kvstore: key not found")

type Metadata map[string]string

//go:generate mockery --name=Store --dir=. --output=./mocks --filename=store_mock.go --case=underscore --with-expecter
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	GetWithMetadata(ctx context.Context, key string) ([]byte, Metadata, error)
	Put(ctx context.Context, key string, value []byte, metadata Metadata) error
}
