package store

// Compressor shrinks encoded drafts before they are written to a Store.
type Compressor interface {
	Compress([]byte) ([]byte, error)
	Decompress([]byte) ([]byte, error)
}
