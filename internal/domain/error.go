package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrSendInFlight       = errors.New("a send cycle is already in progress")
	ErrAllProvidersFailed = errors.New("all response providers failed")
)
