package preptypes

import "context"

// Session is the only durable identity artifact: who is logged in.
type Session struct {
	Email string `json:"email"`
}

// UnverifiedAccount is a sign-up waiting for its verification code.
// ExpiresAt is a unix timestamp in milliseconds.
type UnverifiedAccount struct {
	Email               string `json:"email"`
	PasswordPlaceholder string `json:"passwordHash"`
	VerificationCode    string `json:"verificationCode"`
	ExpiresAt           int64  `json:"expires"`
}

// VerifiedAccount is a confirmed account that can log in.
type VerifiedAccount struct {
	Email               string `json:"email"`
	PasswordPlaceholder string `json:"passwordHash"`
}

// Storage is the key-value port the session store and history are built on.
// Every logical record is read and written as a whole value.
type Storage interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// Service defines the interface for examprep services registered at startup.
type Service interface {
	Name() string
	Initialize() error
}
