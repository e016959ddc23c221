package repository

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
)

// APIURLKey is the key under which the last used API base URL is stored.
const APIURLKey = "part11-api-url"

// Repository persists the harness settings between runs.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	GetAPIURL(ctx context.Context) (string, error)
	SetAPIURL(ctx context.Context, url string) error
}
