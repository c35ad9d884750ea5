package cli

import (
	"context"
	"errors"
	"strconv"

	"github.com/dmitrijs2005/resourcehub/internal/client/services"
	"github.com/dmitrijs2005/resourcehub/internal/common"
	"github.com/dmitrijs2005/resourcehub/internal/netx"
	"github.com/dmitrijs2005/resourcehub/internal/questions"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

var errNotLoggedIn = errors.New("not logged in")

func (a *App) requireConfigured() error {
	if !a.authService.Configured() {
		a.say(services.ErrNotConfigured.Error())
		return services.ErrNotConfigured
	}
	return nil
}

// SignUp collects the sign-up form and creates the account. The password is
// asked twice and must match.
func (a *App) SignUp(ctx context.Context) error {
	if err := a.requireConfigured(); err != nil {
		return err
	}

	fullName, err := getSimpleText(a.reader, "Full name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(a.out, "Confirm password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := services.ValidateConfirmation(string(password), string(confirm)); err != nil {
		a.say(err.Error())
		return err
	}

	question, err := a.chooseQuestion()
	if err != nil {
		a.say(err.Error())
		return err
	}

	answer, err := getSimpleText(a.reader, "Answer", a.out)
	if err != nil {
		return err
	}

	err = a.authService.SignUp(ctx, services.SignUpInput{
		Email:            email,
		Password:         string(password),
		FullName:         fullName,
		SecurityQuestion: question,
		SecurityAnswer:   answer,
	})
	if err != nil {
		var partial *services.PartialSignupError
		if errors.As(err, &partial) {
			a.logger.Error(ctx, "sign-up left an incomplete account", "identity_id", partial.IdentityID, "error", err)
			a.say("Sign-up failed and the account could not be cleaned up. Please contact support.")
			return err
		}
		a.say("Sign-up failed:", err.Error())
		return err
	}

	a.say("Account created. You can now log in.")
	return nil
}

// chooseQuestion shows the numbered question menu and returns the choice.
func (a *App) chooseQuestion() (string, error) {
	a.say("Security question:")
	for i, q := range questions.All() {
		a.say(" ", strconv.Itoa(i+1)+".", q)
	}

	choice, err := getSimpleText(a.reader, "Select a question number", a.out)
	if err != nil {
		return "", err
	}
	n, err := strconv.Atoi(choice)
	if err != nil {
		return "", services.ErrSecurityQuestionRequired
	}
	q, ok := questions.ByNumber(n)
	if !ok {
		return "", services.ErrSecurityQuestionRequired
	}
	return q, nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	if err := a.requireConfigured(); err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.SignIn(ctx, email, string(password)); err != nil {
		a.say("Login unsuccessful:", err.Error())
		return err
	}

	a.say("Signed in as", email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.requireConfigured(); err != nil {
		return err
	}
	if err := a.authService.SignOut(ctx); err != nil {
		a.say("Logout failed:", err.Error())
		return err
	}
	a.say("Signed out")
	return nil
}

// WhoAmI prints the signed-in identity.
func (a *App) WhoAmI(ctx context.Context) error {
	if !a.isLoggedIn() {
		a.say("Not signed in")
		return nil
	}
	id := a.view.State().Identity
	if id.FullName != "" {
		a.say(id.FullName, "<"+id.Email+">")
	} else {
		a.say(id.Email)
	}
	a.say("id:", id.ID)
	return nil
}

// Avatar prints a presigned URL the user can PUT a profile picture to.
// When path is given, the file is uploaded right away.
func (a *App) Avatar(ctx context.Context, path string) error {
	if err := a.requireConfigured(); err != nil {
		return err
	}
	if !a.isLoggedIn() {
		a.say("Please log in first")
		return errNotLoggedIn
	}

	url, err := a.authService.AvatarUploadURL(ctx)
	if err != nil {
		a.say("Could not get upload URL:", err.Error())
		return err
	}

	if path == "" {
		a.say("Upload your picture with an HTTP PUT to:")
		a.say(url)
		return nil
	}

	if err := netx.UploadFile(ctx, nil, url, path); err != nil {
		a.say("Avatar upload failed:", err.Error())
		return err
	}
	a.say("Avatar uploaded")
	return nil
}
