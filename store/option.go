package store

type Option interface {
	config(*DraftStore)
}

// WithCompressor compresses the encoded drafts before handing them to the underlying store.
func WithCompressor(cmp Compressor) Option {
	return &withCmp{
		cmp: cmp,
	}
}

type withCmp struct {
	cmp Compressor
}

func (opt withCmp) config(store *DraftStore) {
	store.cmp = opt.cmp
}
