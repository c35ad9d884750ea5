package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/resourcehub/internal/client/services"
	"github.com/dmitrijs2005/resourcehub/internal/common"
)

// Forgot runs the password recovery dialog: email, then the security
// question, then a new password. A wrong answer may be retried.
func (a *App) Forgot(ctx context.Context) error {
	if err := a.requireConfigured(); err != nil {
		return err
	}

	r := services.NewRecovery(a.authService)

	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	if err := r.SubmitEmail(ctx, email); err != nil {
		a.say(err.Error())
		return err
	}

	for {
		st := r.State()
		a.say("Security question:", st.Question)

		answer, err := getSimpleText(a.reader, "Answer", a.out)
		if err != nil {
			return err
		}
		newPassword, err := getPassword(a.out, "New password")
		if err != nil {
			return err
		}
		confirm, err := getPassword(a.out, "Confirm new password")
		if err != nil {
			common.WipeByteArray(newPassword)
			return err
		}

		err = r.SubmitAnswer(ctx, answer, string(newPassword), string(confirm))
		common.WipeByteArray(newPassword)
		common.WipeByteArray(confirm)

		if err == nil {
			a.say("Password updated. Please log in with your new password.")
			return nil
		}

		a.say(err.Error())
		if !retryable(err) || !Confirm(a.reader, "Try again?", a.out) {
			r.Back()
			return err
		}
	}
}

func retryable(err error) bool {
	return errors.Is(err, services.ErrInvalidSecurityAnswer) ||
		errors.Is(err, services.ErrPasswordMismatch) ||
		errors.Is(err, services.ErrPasswordTooShort) ||
		errors.Is(err, services.ErrSecurityAnswerRequired)
}
