package ports

import "context"

// TempStore holds parsed uploads between the upload and apply requests
type TempStore interface {
	// Put stores data and returns the token that retrieves it.
	Put(ctx context.Context, data []byte) (string, error)

	// Get returns the data for token; ok is false when the token is unknown
	// or has expired.
	Get(ctx context.Context, token string) (data []byte, ok bool, err error)

	// Delete removes the data for token. Unknown tokens are not an error.
	Delete(ctx context.Context, token string) error
}
