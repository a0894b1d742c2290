package service

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotOwner            = errors.New("tournament belongs to another operator")
	ErrTournamentCompleted = errors.New("tournament is already completed")
	ErrStorageUnavailable  = errors.New("avatar storage is not configured")
	ErrUnsupportedImage    = errors.New("unsupported image type")
)
