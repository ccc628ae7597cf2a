package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication and authorization errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrForbidden        = fmt.Errorf("forbidden")

	// Persistence errors
	ErrNotFound    = fmt.Errorf("not found")
	ErrConflict    = fmt.Errorf("already exists")
	ErrPersistence = fmt.Errorf("persistence failure")

	// Storage errors
	ErrStorage = fmt.Errorf("file storage failure")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
