package storage

import "errors"

var (
	ErrConnection        = errors.New("vector store unreachable")
	ErrQuery             = errors.New("vector store query failed")
	ErrUpsert            = errors.New("vector store upsert failed")
	ErrIndexNotReady     = errors.New("index not ready")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
