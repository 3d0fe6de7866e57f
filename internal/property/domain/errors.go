package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrUpstreamMedia = errors.New("media store error")
	ErrConflict      = errors.New("already exists")
)
