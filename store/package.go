// Package store implements types that store the content of drafts.
//
// Drafts may be stored either in-memory or on-disk.
// When stored on disk, they are stored encrypted and optionally compressed.
package store
