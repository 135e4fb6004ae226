package repository

import "errors"

var (
	// ErrInvalidSourceURL indicates an invalid candidate source URL
	ErrInvalidSourceURL = errors.New("invalid candidate source URL")

	// ErrFrameNotFound indicates the candidate frame was not found
	ErrFrameNotFound = errors.New("candidate frame not found")

	// ErrRepositoryUnavailable indicates the repository is unavailable
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
