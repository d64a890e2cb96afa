package service

import "errors"

var (
	ErrNotFound          = errors.New("error not found")
	ErrUnavailable       = errors.New("error upstream unavailable")
	ErrInvalidSymbol     = errors.New("error invalid symbol")
	ErrTooManySymbols    = errors.New("error too many symbols")
	ErrEmptyMessage      = errors.New("error empty message")
	ErrStorageNotEnabled = errors.New("error cloud storage not configured")
)
