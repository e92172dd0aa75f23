package usecase

import "errors"

// ErrPersistence wraps repository failures so callers can map them to a
// single storage-failure response without inspecting driver errors.
var ErrPersistence = errors.New("persistence failure")
