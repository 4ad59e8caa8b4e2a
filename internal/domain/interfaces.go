package domain

import "context"

// DocumentSource reads files of an exported bundle by bundle-relative path.
// Errors wrap ErrDocumentFetch.
type DocumentSource interface {
	Fetch(ctx context.Context, path string) ([]byte, error)

	// Locate returns an address for path that external applications can open
	Locate(path string) string
}
