package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/resourcehub/internal/client/models"
	"github.com/dmitrijs2005/resourcehub/internal/client/services"
	"github.com/dmitrijs2005/resourcehub/internal/client/session"
	"github.com/dmitrijs2005/resourcehub/internal/logging"
)

// stubPasswords makes getPassword return pws in order, then empty values.
func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	orig := getPassword
	i := 0
	getPassword = func(_ io.Writer, _ string) ([]byte, error) {
		if i >= len(pws) {
			return []byte{}, nil
		}
		pw := []byte(pws[i])
		i++
		return pw, nil
	}
	t.Cleanup(func() { getPassword = orig })
}

func silencePrintln(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}

type fakeView struct {
	snap session.Snapshot
}

func (f *fakeView) State() session.Snapshot { return f.snap }

func signedIn() *fakeView {
	id := &models.Identity{ID: "u1", Email: "ann@example.com", FullName: "Ann Bell"}
	return &fakeView{snap: session.Snapshot{Identity: id, Session: &models.Session{Identity: id}}}
}

type fakeAuth struct {
	notConfigured bool

	signUpIn  services.SignUpInput
	signUpErr error

	signInEmail string
	signInPass  string
	signInErr   error

	signOutCalls int
	signOutErr   error

	question    string
	questionErr error

	// resetErrs is consumed one per ResetPassword call
	resetErrs  []error
	resetCalls int
	lastReset  [3]string

	avatarURL string
	avatarErr error
}

func (f *fakeAuth) SignUp(_ context.Context, in services.SignUpInput) error {
	f.signUpIn = in
	return f.signUpErr
}
func (f *fakeAuth) SignIn(_ context.Context, email, password string) error {
	f.signInEmail, f.signInPass = email, password
	return f.signInErr
}
func (f *fakeAuth) SignOut(context.Context) error {
	f.signOutCalls++
	return f.signOutErr
}
func (f *fakeAuth) VerifySecurityAnswer(context.Context, string, string) (bool, error) {
	return false, nil
}
func (f *fakeAuth) ResetPassword(_ context.Context, email, answer, newPassword string) error {
	f.resetCalls++
	f.lastReset = [3]string{email, answer, newPassword}
	if len(f.resetErrs) == 0 {
		return nil
	}
	err := f.resetErrs[0]
	f.resetErrs = f.resetErrs[1:]
	return err
}
func (f *fakeAuth) GetSecurityQuestion(context.Context, string) (string, error) {
	return f.question, f.questionErr
}
func (f *fakeAuth) AvatarUploadURL(context.Context) (string, error) {
	return f.avatarURL, f.avatarErr
}
func (f *fakeAuth) Configured() bool { return !f.notConfigured }

func newTestApp(auth services.AuthService, view sessionView, input string) (*App, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return &App{
		authService: auth,
		view:        view,
		logger:      logging.NopLogger{},
		reader:      bufio.NewReader(strings.NewReader(input)),
		out:         out,
	}, out
}
