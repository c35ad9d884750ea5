// Package services contains application services for the resourcehub client.
// This file defines the auth orchestrator: sign-up with its credential
// profile, sign-in/out and security-question recovery.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/resourcehub/internal/client/client"
	"github.com/dmitrijs2005/resourcehub/internal/client/models"
	"github.com/dmitrijs2005/resourcehub/internal/common"
	"github.com/dmitrijs2005/resourcehub/internal/cryptox"
	pb "github.com/dmitrijs2005/resourcehub/internal/identitypb"
	"github.com/dmitrijs2005/resourcehub/internal/logging"
	"github.com/dmitrijs2005/resourcehub/internal/timeouts"
	"github.com/dmitrijs2005/resourcehub/internal/validation"
	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc/codes"
)

// AuthService defines the authentication operations offered to the CLI.
//
// Contract:
//   - Every method returns ErrNotConfigured without network access when the
//     service was built without a client.
//   - Every method is bounded by the configured per-call timeout; running
//     out of time yields ErrTimeout.
//   - Validation failures are reported before any remote call.
type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) error
	SignIn(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	VerifySecurityAnswer(ctx context.Context, email, answer string) (bool, error)
	ResetPassword(ctx context.Context, email, answer, newPassword string) error
	GetSecurityQuestion(ctx context.Context, email string) (string, error)
	AvatarUploadURL(ctx context.Context) (string, error)
	Configured() bool
}

// SignUpInput is the sign-up form.
type SignUpInput struct {
	Email            string `validate:"required,email"`
	Password         string `validate:"min=6"`
	FullName         string `validate:"notblank"`
	SecurityQuestion string `validate:"securityquestion"`
	SecurityAnswer   string `validate:"notblank"`
}

var signUpFailures = map[string]error{
	"Email":            ErrInvalidEmail,
	"Password":         ErrPasswordTooShort,
	"SecurityQuestion": ErrSecurityQuestionRequired,
	"SecurityAnswer":   ErrSecurityAnswerRequired,
	"FullName":         ErrFullNameRequired,
}

// signUpRuleOrder is the order rules are reported in when several fail.
var signUpRuleOrder = []string{"Password", "SecurityQuestion", "SecurityAnswer", "FullName", "Email"}

const metaFullName = "full_name"

type authService struct {
	client   client.Client
	validate *validator.Validate
	logger   logging.Logger
	timeout  time.Duration
	now      func() time.Time
}

type Option func(*authService)

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *authService) { a.timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(a *authService) { a.logger = l.With("module", "auth") }
}

func WithClock(now func() time.Time) Option {
	return func(a *authService) { a.now = now }
}

// NewAuthService builds the orchestrator. A nil c puts it in the
// not-configured state.
func NewAuthService(c client.Client, opts ...Option) AuthService {
	a := &authService{
		client:   c,
		validate: validation.New(),
		logger:   logging.NopLogger{},
		timeout:  timeouts.Call,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *authService) Configured() bool {
	return a.client != nil
}

// ValidateConfirmation checks that the password was typed the same twice.
func ValidateConfirmation(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < common.MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func (a *authService) validateSignUp(in SignUpInput) error {
	err := a.validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	failed := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		failed[fe.StructField()] = true
	}
	for _, field := range signUpRuleOrder {
		if failed[field] {
			return signUpFailures[field]
		}
	}
	return err
}

func (a *authService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.timeout)
}

// callErr turns a deadline into ErrTimeout and leaves other errors alone.
func callErr(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}

// SignUp creates the account and then its credential profile. When the
// profile cannot be stored the account is deleted again so a half-created
// account is never left behind silently.
func (a *authService) SignUp(ctx context.Context, in SignUpInput) error {
	if a.client == nil {
		return ErrNotConfigured
	}

	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := a.validateSignUp(in); err != nil {
		return err
	}

	digest := cryptox.HashSecurityAnswer(in.SecurityAnswer)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	identity, provisioningToken, err := a.client.CreateAccount(ctx, in.Email, in.Password,
		map[string]string{metaFullName: in.FullName})
	if err != nil {
		return callErr(ctx, err)
	}
	if identity == nil || identity.ID == "" {
		a.logger.Error(ctx, "account created without identity in response")
		if provisioningToken != "" {
			if rbErr := a.client.DeleteAccount(ctx, provisioningToken); rbErr != nil {
				a.logger.Error(ctx, "account rollback failed", "error", rbErr)
			}
		}
		return ErrUnexpectedResponse
	}

	profile := &models.Profile{
		ID:                 identity.ID,
		FullName:           in.FullName,
		SecurityQuestion:   in.SecurityQuestion,
		SecurityAnswerHash: digest,
	}
	if err := a.client.InsertProfile(ctx, provisioningToken, profile); err != nil {
		profileErr := callErr(ctx, err)
		a.logger.Warn(ctx, "profile creation failed, rolling back account",
			"identity_id", identity.ID, "error", profileErr)

		// the sign-up deadline may already be spent
		rbCtx, rbCancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer rbCancel()

		if rbErr := a.client.DeleteAccount(rbCtx, provisioningToken); rbErr != nil {
			a.logger.Error(ctx, "account rollback failed",
				"identity_id", identity.ID, "error", rbErr)
			return &PartialSignupError{
				IdentityID:  identity.ID,
				ProfileErr:  profileErr,
				RollbackErr: callErr(rbCtx, rbErr),
			}
		}
		return fmt.Errorf("create profile: %w", profileErr)
	}

	a.logger.Info(ctx, "account created", "identity_id", identity.ID)
	return nil
}

// SignIn authenticates and records the login time. The login time is best
// effort and never fails the sign-in.
func (a *authService) SignIn(ctx context.Context, email, password string) error {
	if a.client == nil {
		return ErrNotConfigured
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	s, err := a.client.SignInWithPassword(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return callErr(ctx, err)
	}

	if s != nil && s.Identity != nil {
		if err := a.client.UpdateLastLogin(ctx, s.Identity.ID, a.now()); err != nil {
			a.logger.Warn(ctx, "failed to record last login", "identity_id", s.Identity.ID, "error", err)
		}
	}
	return nil
}

func (a *authService) SignOut(ctx context.Context) error {
	if a.client == nil {
		return ErrNotConfigured
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.client.SignOut(ctx); err != nil {
		return callErr(ctx, err)
	}
	return nil
}

// VerifySecurityAnswer reports whether answer matches the stored digest for
// email. Only an explicit boolean true from the service counts as a match.
func (a *authService) VerifySecurityAnswer(ctx context.Context, email, answer string) (bool, error) {
	if a.client == nil {
		return false, ErrNotConfigured
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	return a.verify(ctx, email, answer)
}

func (a *authService) verify(ctx context.Context, email, answer string) (bool, error) {
	res, err := a.client.Call(ctx, pb.ProcVerifySecurityAnswer, map[string]any{
		pb.FieldUserEmail:  strings.TrimSpace(email),
		pb.FieldAnswerHash: cryptox.HashSecurityAnswer(answer),
	})
	if err != nil {
		return false, callErr(ctx, err)
	}
	ok, isBool := res.(bool)
	return isBool && ok, nil
}

// ResetPassword sets a new password after the security answer is verified.
// The stored question and answer are left untouched.
func (a *authService) ResetPassword(ctx context.Context, email, answer, newPassword string) error {
	if a.client == nil {
		return ErrNotConfigured
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if strings.TrimSpace(answer) == "" {
		return ErrSecurityAnswerRequired
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	ok, err := a.verify(ctx, email, answer)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidSecurityAnswer
	}

	_, err = a.client.Call(ctx, pb.ProcResetPasswordWithSecurity, map[string]any{
		pb.FieldUserEmail:   strings.TrimSpace(email),
		pb.FieldAnswerHash:  cryptox.HashSecurityAnswer(answer),
		pb.FieldNewPassword: newPassword,
	})
	if err != nil {
		return callErr(ctx, err)
	}

	a.logger.Info(ctx, "password reset via security question")
	return nil
}

func (a *authService) GetSecurityQuestion(ctx context.Context, email string) (string, error) {
	if a.client == nil {
		return "", ErrNotConfigured
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	res, err := a.client.Call(ctx, pb.ProcGetSecurityQuestion, map[string]any{
		pb.FieldUserEmail: strings.TrimSpace(email),
	})
	if err != nil {
		var remote *client.RemoteError
		if errors.As(err, &remote) && remote.Code == codes.NotFound {
			return "", ErrQuestionNotFound
		}
		return "", callErr(ctx, err)
	}

	q, _ := res.(string)
	if q == "" {
		return "", ErrQuestionNotFound
	}
	return q, nil
}

// AvatarUploadURL asks for a presigned upload URL for the signed-in
// identity's avatar.
func (a *authService) AvatarUploadURL(ctx context.Context) (string, error) {
	if a.client == nil {
		return "", ErrNotConfigured
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	res, err := a.client.Call(ctx, pb.ProcAvatarUploadURL, nil)
	if err != nil {
		return "", callErr(ctx, err)
	}

	m, _ := res.(map[string]any)
	u, _ := m[pb.FieldURL].(string)
	if u == "" {
		return "", ErrUnexpectedResponse
	}
	return u, nil
}
