package domain

import "errors"

var (
	ErrValidation      = errors.New("validation failed")
	ErrUpstream        = errors.New("upstream request failed")
	ErrDuplicate       = errors.New("favorite already exists")
	ErrNotFound        = errors.New("favorite not found")
	ErrNoCurrentResult = errors.New("no vehicle queried")
	ErrNotConfirmed    = errors.New("operation not confirmed")
)
