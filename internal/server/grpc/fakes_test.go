package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/resourcehub/internal/logging"
	"github.com/dmitrijs2005/resourcehub/internal/server/auth"
	"github.com/dmitrijs2005/resourcehub/internal/server/models"
	"github.com/dmitrijs2005/resourcehub/internal/server/services"
)

// ---- fakes ----

type fakeIdentity struct {
	account  *models.Account
	token    string
	session  *services.Session
	err      error
	gotEmail string
	gotPass  string
	gotMeta  map[string]string
	gotID    string
	gotToken string
}

func (f *fakeIdentity) CreateAccount(ctx context.Context, email, password string, meta map[string]string) (*models.Account, string, error) {
	f.gotEmail, f.gotPass, f.gotMeta = email, password, meta
	return f.account, f.token, f.err
}
func (f *fakeIdentity) DeleteAccount(ctx context.Context, accountID string) error {
	f.gotID = accountID
	return f.err
}
func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (*services.Session, error) {
	f.gotEmail, f.gotPass = email, password
	return f.session, f.err
}
func (f *fakeIdentity) RefreshSession(ctx context.Context, refreshToken string) (*services.Session, error) {
	f.gotToken = refreshToken
	return f.session, f.err
}
func (f *fakeIdentity) SignOut(ctx context.Context, refreshToken string) error {
	f.gotToken = refreshToken
	return f.err
}
func (f *fakeIdentity) GetIdentity(ctx context.Context, accountID string) (*models.Account, error) {
	f.gotID = accountID
	return f.account, f.err
}

type fakeProfiles struct {
	err     error
	profile *models.Profile
	gotID   string
	gotAt   time.Time
}

func (f *fakeProfiles) InsertProfile(ctx context.Context, p *models.Profile) error {
	f.profile = p
	return f.err
}
func (f *fakeProfiles) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	f.gotID, f.gotAt = id, at
	return f.err
}

type fakeRecovery struct {
	question  string
	ok        bool
	err       error
	gotEmail  string
	gotDigest string
	gotPass   string
}

func (f *fakeRecovery) GetSecurityQuestion(ctx context.Context, email string) (string, error) {
	f.gotEmail = email
	return f.question, f.err
}
func (f *fakeRecovery) VerifySecurityAnswer(ctx context.Context, email, digest string) (bool, error) {
	f.gotEmail, f.gotDigest = email, digest
	return f.ok, f.err
}
func (f *fakeRecovery) ResetPasswordWithSecurity(ctx context.Context, email, digest, newPassword string) error {
	f.gotEmail, f.gotDigest, f.gotPass = email, digest, newPassword
	return f.err
}

type fakeAvatars struct {
	upload *services.AvatarUpload
	err    error
	gotID  string
}

func (f *fakeAvatars) UploadURL(ctx context.Context, accountID string) (*services.AvatarUpload, error) {
	f.gotID = accountID
	return f.upload, f.err
}

type fixture struct {
	srv      *GRPCServer
	identity *fakeIdentity
	profiles *fakeProfiles
	recovery *fakeRecovery
	avatars  *fakeAvatars
}

const (
	testAPIKey = "test-api-key"
	testSecret = "secret"
	testUserID = "0b6f0c1e-7a43-4d3c-9d61-1f6c1c2f9a10"
)

func newFixture() *fixture {
	f := &fixture{
		identity: &fakeIdentity{},
		profiles: &fakeProfiles{},
		recovery: &fakeRecovery{},
		avatars:  &fakeAvatars{},
	}
	f.srv = NewGRPCServer("127.0.0.1:0", logging.NopLogger{}, Services{
		Identity: f.identity,
		Profiles: f.profiles,
		Recovery: f.recovery,
		Avatars:  f.avatars,
	}, nil, testAPIKey, testSecret)
	return f
}

// withClaims stores claims the way accessTokenInterceptor does.
func withClaims(ctx context.Context, userID string, scope auth.Scope) context.Context {
	return context.WithValue(ctx, authInfoKey, authInfo{claims: &auth.Claims{UserID: userID, Scope: scope}})
}

func withAuthError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, authInfoKey, authInfo{err: err})
}
