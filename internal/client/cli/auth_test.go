package cli

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/resourcehub/internal/client/services"
	"github.com/dmitrijs2005/resourcehub/internal/questions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUp_Success(t *testing.T) {
	f := &fakeAuth{}
	a, out := newTestApp(f, &fakeView{}, "Ann Bell\nann@example.com\n3\nDurham\n")
	stubPasswords(t, "secret1", "secret1")

	require.NoError(t, a.SignUp(context.Background()))
	assert.Equal(t, services.SignUpInput{
		Email:            "ann@example.com",
		Password:         "secret1",
		FullName:         "Ann Bell",
		SecurityQuestion: questions.All()[2],
		SecurityAnswer:   "Durham",
	}, f.signUpIn)
	assert.Contains(t, out.String(), "Account created")
	assert.Contains(t, out.String(), "1. "+questions.All()[0])
}

func TestSignUp_PasswordMismatch(t *testing.T) {
	f := &fakeAuth{}
	a, out := newTestApp(f, &fakeView{}, "Ann\nann@example.com\n")
	stubPasswords(t, "secret1", "secret2")

	err := a.SignUp(context.Background())
	require.ErrorIs(t, err, services.ErrPasswordMismatch)
	assert.Contains(t, out.String(), "Passwords do not match")
	assert.Empty(t, f.signUpIn.Email)
}

func TestSignUp_BadQuestionChoice(t *testing.T) {
	for _, choice := range []string{"abc", "0", "9"} {
		f := &fakeAuth{}
		a, out := newTestApp(f, &fakeView{}, "Ann\nann@example.com\n"+choice+"\n")
		stubPasswords(t, "secret1", "secret1")

		err := a.SignUp(context.Background())
		require.ErrorIs(t, err, services.ErrSecurityQuestionRequired, "choice %q", choice)
		assert.Contains(t, out.String(), "Please select a security question")
	}
}

func TestSignUp_ServiceErrorShown(t *testing.T) {
	f := &fakeAuth{signUpErr: services.ErrPasswordTooShort}
	a, out := newTestApp(f, &fakeView{}, "Ann\nann@example.com\n1\nx\n")
	stubPasswords(t, "123", "123")

	require.Error(t, a.SignUp(context.Background()))
	assert.Contains(t, out.String(), "Password must be at least 6 characters")
}

func TestSignUp_PartialFailure(t *testing.T) {
	f := &fakeAuth{signUpErr: &services.PartialSignupError{
		IdentityID: "u1", ProfileErr: errors.New("a"), RollbackErr: errors.New("b"),
	}}
	a, out := newTestApp(f, &fakeView{}, "Ann\nann@example.com\n1\nx\n")
	stubPasswords(t, "secret1", "secret1")

	require.Error(t, a.SignUp(context.Background()))
	assert.Contains(t, out.String(), "contact support")
}

func TestCommands_NotConfigured(t *testing.T) {
	f := &fakeAuth{notConfigured: true}
	a, out := newTestApp(f, &fakeView{}, "")
	ctx := context.Background()

	require.ErrorIs(t, a.SignUp(ctx), services.ErrNotConfigured)
	require.ErrorIs(t, a.Login(ctx), services.ErrNotConfigured)
	require.ErrorIs(t, a.Logout(ctx), services.ErrNotConfigured)
	require.ErrorIs(t, a.Forgot(ctx), services.ErrNotConfigured)
	require.ErrorIs(t, a.Avatar(ctx, ""), services.ErrNotConfigured)
	assert.Contains(t, out.String(), "identity service not configured")
	assert.Equal(t, "(not configured)", a.getStatus())
}

func TestLogin(t *testing.T) {
	f := &fakeAuth{}
	a, out := newTestApp(f, &fakeView{}, "ann@example.com\n")
	stubPasswords(t, "secret1")

	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, "ann@example.com", f.signInEmail)
	assert.Equal(t, "secret1", f.signInPass)
	assert.Contains(t, out.String(), "Signed in as ann@example.com")
}

func TestLogin_Failure(t *testing.T) {
	f := &fakeAuth{signInErr: errors.New("invalid login credentials")}
	a, out := newTestApp(f, &fakeView{}, "ann@example.com\n")
	stubPasswords(t, "bad")

	require.Error(t, a.Login(context.Background()))
	assert.Contains(t, out.String(), "Login unsuccessful: invalid login credentials")
}

func TestLogout(t *testing.T) {
	f := &fakeAuth{}
	a, out := newTestApp(f, signedIn(), "")

	require.NoError(t, a.Logout(context.Background()))
	assert.Equal(t, 1, f.signOutCalls)
	assert.Contains(t, out.String(), "Signed out")
}

func TestLogout_ErrorPropagates(t *testing.T) {
	f := &fakeAuth{signOutErr: errors.New("server unavailable")}
	a, _ := newTestApp(f, signedIn(), "")
	require.Error(t, a.Logout(context.Background()))
}

func TestWhoAmI(t *testing.T) {
	a, out := newTestApp(&fakeAuth{}, signedIn(), "")
	require.NoError(t, a.WhoAmI(context.Background()))
	assert.Contains(t, out.String(), "Ann Bell <ann@example.com>")
	assert.Contains(t, out.String(), "id: u1")

	a, out = newTestApp(&fakeAuth{}, &fakeView{}, "")
	require.NoError(t, a.WhoAmI(context.Background()))
	assert.Contains(t, out.String(), "Not signed in")
}

func TestAvatar(t *testing.T) {
	f := &fakeAuth{avatarURL: "https://bucket.s3/put?sig"}
	a, out := newTestApp(f, signedIn(), "")
	require.NoError(t, a.Avatar(context.Background(), ""))
	assert.Contains(t, out.String(), "https://bucket.s3/put?sig")

	a, _ = newTestApp(f, &fakeView{}, "")
	require.ErrorIs(t, a.Avatar(context.Background(), ""), errNotLoggedIn)
}

func TestAvatar_UploadsFile(t *testing.T) {
	var got []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = io.ReadAll(r.Body)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(path, []byte("picture"), 0o600))

	a, out := newTestApp(&fakeAuth{avatarURL: srv.URL}, signedIn(), "")
	require.NoError(t, a.Avatar(context.Background(), path))
	assert.Equal(t, []byte("picture"), got)
	assert.Contains(t, out.String(), "Avatar uploaded")

	a, out = newTestApp(&fakeAuth{avatarURL: srv.URL}, signedIn(), "")
	require.Error(t, a.Avatar(context.Background(), filepath.Join(t.TempDir(), "missing.png")))
	assert.Contains(t, out.String(), "Avatar upload failed")
}

func TestGetStatus(t *testing.T) {
	a, _ := newTestApp(&fakeAuth{}, signedIn(), "")
	assert.Equal(t, "(ann@example.com)", a.getStatus())
	assert.True(t, a.isLoggedIn())

	a, _ = newTestApp(&fakeAuth{}, &fakeView{}, "")
	assert.Equal(t, "", a.getStatus())
	assert.False(t, a.isLoggedIn())

	a.view = &fakeView{}
	a.view.(*fakeView).snap.Loading = true
	assert.Equal(t, "(loading)", a.getStatus())
}
