package database

import "errors"

var (
	ErrNotFound          = errors.New("record not found")
	ErrUnsupportedDBType = errors.New("unsupported database type")
	ErrInvalidConfig     = errors.New("invalid database config")
	ErrMissingID         = errors.New("record id is required")
)
