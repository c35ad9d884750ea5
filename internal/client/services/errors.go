package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/resourcehub/internal/client/client"
)

var (
	ErrNotConfigured = errors.New("identity service not configured")
	ErrTimeout       = client.ErrTimeout
)

// Input validation failures. Their messages are shown to the user verbatim.
var (
	ErrPasswordTooShort         = errors.New("Password must be at least 6 characters")
	ErrPasswordMismatch         = errors.New("Passwords do not match")
	ErrSecurityQuestionRequired = errors.New("Please select a security question")
	ErrSecurityAnswerRequired   = errors.New("Please provide an answer to the security question")
	ErrInvalidEmail             = errors.New("Please enter a valid email address")
	ErrFullNameRequired         = errors.New("Please enter your full name")
	ErrInvalidSecurityAnswer    = errors.New("Invalid security answer")
	ErrEmailLookupFailed        = errors.New("Email not found or error retrieving security question")
)

var (
	ErrQuestionNotFound   = errors.New("security question not found")
	ErrRecoveryNotStarted = errors.New("submit an email address first")
	ErrUnexpectedResponse = errors.New("unexpected response from identity service")
)

// PartialSignupError reports an account that was created but could not be
// completed with a profile nor rolled back. The account needs manual cleanup.
type PartialSignupError struct {
	IdentityID  string
	ProfileErr  error
	RollbackErr error
}

func (e *PartialSignupError) Error() string {
	return fmt.Sprintf("account %s created without profile: %v; rollback failed: %v",
		e.IdentityID, e.ProfileErr, e.RollbackErr)
}

func (e *PartialSignupError) Unwrap() []error {
	return []error{e.ProfileErr, e.RollbackErr}
}
