// Package storage provides the durable key-value capability the design
// manager persists through. Every backend stores whole values only: Set
// overwrites, there are no partial writes or merges.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Store is a key-value store over byte values.
type Store interface {
	// Get returns found=false with a nil error when key has no value.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

var ErrUnknownBackend = errors.New("unknown storage backend")

const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendDynamoDB = "dynamodb"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	File    FileConfig
	SQLite  SQLiteConfig
	Dynamo  DynamoConfig
}

type FileConfig struct {
	Dir string
}

type SQLiteConfig struct {
	Path string
}

// Open builds the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile, "":
		return NewFile(cfg.File.Dir), nil
	case BackendSQLite:
		return NewSQLite(cfg.SQLite.Path)
	case BackendDynamoDB:
		return NewDynamo(ctx, cfg.Dynamo)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}
