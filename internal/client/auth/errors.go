package auth

import "errors"

var (
	// ErrNoAccount means no account is cached; the user has never signed in
	// on this device or has signed out.
	ErrNoAccount = errors.New("no signed-in account")

	// ErrInteractionRequired means the cached account can no longer be used
	// silently and the user must sign in interactively.
	ErrInteractionRequired = errors.New("interactive sign-in required")
)

// AcquireError is any other token acquisition failure.
type AcquireError struct {
	Err error
}

func (e *AcquireError) Error() string {
	return "token acquisition failed: " + e.Err.Error()
}

func (e *AcquireError) Unwrap() error { return e.Err }
