package repository

import "errors"

var (
	ErrNotFound = errors.New("error not found")
)
