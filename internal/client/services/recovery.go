package services

import (
	"context"
	"errors"
	"strings"
)

// Phase is the step a password recovery is at.
type Phase int

const (
	PhaseCollectEmail Phase = iota
	PhaseVerifyAnswer
)

func (p Phase) String() string {
	switch p {
	case PhaseCollectEmail:
		return "collect_email"
	case PhaseVerifyAnswer:
		return "verify_answer"
	default:
		return "unknown"
	}
}

// RecoveryState is what the recovery dialog shows.
type RecoveryState struct {
	Phase    Phase
	Email    string
	Question string
	Answer   string
	Err      error
	// Done is set after a successful reset; the caller should move on to
	// sign-in.
	Done bool
}

// Recovery drives the two-step forgot-password dialog: look up the security
// question for an email, then answer it and choose a new password.
type Recovery struct {
	auth  AuthService
	state RecoveryState
}

func NewRecovery(auth AuthService) *Recovery {
	return &Recovery{auth: auth}
}

func (r *Recovery) State() RecoveryState {
	return r.state
}

// SubmitEmail looks up the security question for email. Lookup failures are
// reported with one generic message so the dialog does not reveal which
// emails exist.
func (r *Recovery) SubmitEmail(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	r.state = RecoveryState{Phase: PhaseCollectEmail, Email: email}

	if email == "" {
		r.state.Err = ErrInvalidEmail
		return r.state.Err
	}

	q, err := r.auth.GetSecurityQuestion(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			r.state.Err = ErrNotConfigured
		} else {
			r.state.Err = ErrEmailLookupFailed
		}
		return r.state.Err
	}

	r.state.Phase = PhaseVerifyAnswer
	r.state.Question = q
	return nil
}

// SubmitAnswer resets the password when the answer is right. On success
// all collected state is cleared and Done is set.
func (r *Recovery) SubmitAnswer(ctx context.Context, answer, newPassword, confirm string) error {
	if r.state.Phase != PhaseVerifyAnswer {
		r.state.Err = ErrRecoveryNotStarted
		return r.state.Err
	}

	r.state.Answer = answer
	r.state.Err = nil

	if err := ValidateConfirmation(newPassword, confirm); err != nil {
		r.state.Err = err
		return err
	}
	if err := validatePassword(newPassword); err != nil {
		r.state.Err = err
		return err
	}

	if err := r.auth.ResetPassword(ctx, r.state.Email, answer, newPassword); err != nil {
		r.state.Err = err
		return err
	}

	r.state = RecoveryState{Phase: PhaseCollectEmail, Done: true}
	return nil
}

// Back returns to the email step. The email is kept for editing.
func (r *Recovery) Back() {
	r.state = RecoveryState{Phase: PhaseCollectEmail, Email: r.state.Email}
}
