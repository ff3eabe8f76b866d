package model

import "errors"

var (
	// ErrNotFound is returned by stores when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned by stores when a unique key is already taken.
	ErrAlreadyExists = errors.New("already exists")
	// ErrMissingSubject is returned by identity verifiers when a valid token names no subject.
	ErrMissingSubject = errors.New("id token has no subject")
)
