package manifest

import "context"

// Loader reads a user manifest file in some concrete format and returns the
// keys it declares.
type Loader interface {
	LoadFile(ctx context.Context, path string) (Override, error)
}
