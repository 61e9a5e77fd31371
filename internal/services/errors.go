package services

import "errors"

// ErrUnauthorized means the request carries no authenticated user.
var ErrUnauthorized = errors.New("unauthorized")
