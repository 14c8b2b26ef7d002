// Package storage abstracts where file bytes live. The lifecycle layer only
// sees this narrow contract; local disk and S3 are interchangeable behind it.
package storage

import (
	"context"
	"io"

	"evsys/event-api/internal/model"
)

type Storage interface {
	// Store writes the object under key and returns the URL it can be
	// retrieved from later.
	Store(ctx context.Context, key string, r io.Reader, size int64, contentType string) (url string, err error)

	// Delete removes the object behind url. Deleting a missing object is
	// not an error.
	Delete(ctx context.Context, url string) error

	// Rename moves the object behind url so its last path element becomes
	// newName, returning the new URL.
	Rename(ctx context.Context, url, newName string) (string, error)

	// Provider reports which StorageProvider enum value records created
	// through this backend should carry.
	Provider() model.StorageProvider
}
