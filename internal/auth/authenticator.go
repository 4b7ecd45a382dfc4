// Package auth implements the optional app lock: an owner passcode and the
// short-lived session tokens issued after unlocking.
package auth

import (
	"context"
)

// Authenticator defines the interface for app lock implementations.
// This abstraction allows swapping the passcode for another method
// (biometrics, OS keychain) without changing the service layer code.
type Authenticator interface {
	// Configured reports whether the lock has been set up.
	Configured(ctx context.Context) (bool, error)

	// SetCredential sets a new credential. When one is already configured,
	// current must match it.
	SetCredential(ctx context.Context, current, credential string) error

	// ClearCredential removes the lock. current must match.
	ClearCredential(ctx context.Context, current string) error

	// Authenticate verifies the credential.
	Authenticate(ctx context.Context, credential string) error

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
