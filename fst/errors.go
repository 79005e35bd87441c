package fst

import "github.com/cybroslabs/go-fst/store"

// Error kinds re-exported from package store so callers never need to
// import store directly to errors.As against them.
type (
	FormatError           = store.FormatError
	IllegalStateError      = store.IllegalStateError
	CapacityExceededError = store.CapacityExceededError
	IoError                = store.IoError
)

var (
	newFormatError        = store.NewFormatError
	newIllegalState       = store.NewIllegalState
	newCapacityExceeded    = store.NewCapacityExceeded
	newIoError             = store.NewIoError
)
