package assets

import "context"

// Asset is a stored remote image: a stable identifier plus a resolvable URL.
type Asset struct {
	RemoteID string `json:"public_id"`
	URL      string `json:"secure_url"`
}

// Store is the remote image service boundary. Implementations are opaque
// blocking I/O with no in-core retry policy; callers decide whether a
// failure is fatal.
type Store interface {
	Upload(ctx context.Context, data []byte, folder string) (Asset, error)
	Delete(ctx context.Context, remoteID string) error
}
