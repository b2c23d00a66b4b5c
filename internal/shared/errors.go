package shared

import "fmt"

var (
	// Configuration errors
	ErrConfig             = fmt.Errorf("configuration error")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")
	ErrTimeout          = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest = fmt.Errorf("API request failed")
	ErrNoMatch    = fmt.Errorf("no match")

	// Input and operator errors
	ErrInput           = fmt.Errorf("input error")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrDeclined        = fmt.Errorf("declined by operator")
)
