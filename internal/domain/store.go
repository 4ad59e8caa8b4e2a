package domain

// DocumentStore caches bundle documents (HTML, JSON) by bundle-relative path.
// Bundles are static, so entries never expire; InvalidateAll wipes everything.
type DocumentStore interface {
	GetDocument(path string) ([]byte, bool)
	SaveDocument(path string, data []byte) error

	InvalidateAll()

	Close() error
}
