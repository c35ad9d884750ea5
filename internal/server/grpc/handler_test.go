package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/resourcehub/internal/common"
	pb "github.com/dmitrijs2005/resourcehub/internal/identitypb"
	"github.com/dmitrijs2005/resourcehub/internal/server/auth"
	"github.com/dmitrijs2005/resourcehub/internal/server/models"
	"github.com/dmitrijs2005/resourcehub/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func mustStruct(t *testing.T, fields map[string]any) *structpb.Struct {
	t.Helper()
	s, err := pb.NewStruct(fields)
	require.NoError(t, err)
	return s
}

func requireCode(t *testing.T, err error, code codes.Code) *status.Status {
	t.Helper()
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok, "not a status error: %v", err)
	require.Equal(t, code, st.Code(), st.Message())
	return st
}

func testAccount() *models.Account {
	return &models.Account{ID: testUserID, Email: "jane@example.com", FullName: "Jane Doe"}
}

func TestCreateAccount_ReturnsIdentityAndProvisioningToken(t *testing.T) {
	f := newFixture()
	f.identity.account = testAccount()
	f.identity.token = "prov-token"

	resp, err := f.srv.CreateAccount(context.Background(), mustStruct(t, map[string]any{
		pb.FieldEmail:    "jane@example.com",
		pb.FieldPassword: "secret1",
		pb.FieldMetadata: map[string]string{"full_name": "Jane Doe"},
	}))
	require.NoError(t, err)

	assert.Equal(t, "jane@example.com", f.identity.gotEmail)
	assert.Equal(t, "secret1", f.identity.gotPass)
	assert.Equal(t, map[string]string{"full_name": "Jane Doe"}, f.identity.gotMeta)

	identity := pb.Struct(resp, pb.FieldIdentity)
	assert.Equal(t, testUserID, pb.String(identity, pb.FieldID))
	assert.Equal(t, "Jane Doe", pb.String(identity, pb.FieldFullName))
	assert.Equal(t, map[string]string{"full_name": "Jane Doe"}, pb.StringMap(pb.Struct(identity, pb.FieldMetadata)))
	assert.Equal(t, "prov-token", pb.String(resp, pb.FieldProvisioningToken))
}

func TestCreateAccount_MapsErrors(t *testing.T) {
	cases := []struct {
		err  error
		code codes.Code
		msg  string
	}{
		{fmt.Errorf("%w: invalid email address", common.ErrorValidation), codes.InvalidArgument, "invalid email address"},
		{fmt.Errorf("db error: %w", common.ErrorAlreadyExists), codes.AlreadyExists, "account already exists"},
		{errors.New("boom"), codes.Internal, "internal error"},
	}
	for _, tc := range cases {
		f := newFixture()
		f.identity.err = tc.err

		_, err := f.srv.CreateAccount(context.Background(), &structpb.Struct{})
		st := requireCode(t, err, tc.code)
		assert.Equal(t, tc.msg, st.Message())
	}
}

func TestDeleteAccount_UsesTokenSubject(t *testing.T) {
	f := newFixture()

	_, err := f.srv.DeleteAccount(withClaims(context.Background(), testUserID, auth.ScopeProvision), &structpb.Struct{})
	require.NoError(t, err)
	assert.Equal(t, testUserID, f.identity.gotID)
}

func TestDeleteAccount_RejectsAccessToken(t *testing.T) {
	f := newFixture()

	_, err := f.srv.DeleteAccount(withClaims(context.Background(), testUserID, auth.ScopeAccess), &structpb.Struct{})
	requireCode(t, err, codes.PermissionDenied)
	assert.Empty(t, f.identity.gotID)
}

func TestSignIn_ReturnsSession(t *testing.T) {
	f := newFixture()
	expires := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	f.identity.session = &services.Session{
		Account: testAccount(),
		Tokens:  &models.TokenPair{AccessToken: "a", RefreshToken: "r", ExpiresAt: expires},
	}

	resp, err := f.srv.SignIn(context.Background(), mustStruct(t, map[string]any{
		pb.FieldEmail:    "jane@example.com",
		pb.FieldPassword: "secret1",
	}))
	require.NoError(t, err)

	assert.Equal(t, "a", pb.String(resp, pb.FieldAccessToken))
	assert.Equal(t, "r", pb.String(resp, pb.FieldRefreshToken))
	assert.True(t, expires.Equal(pb.Time(resp, pb.FieldExpiresAt)))
	assert.Equal(t, "jane@example.com", pb.String(pb.Struct(resp, pb.FieldIdentity), pb.FieldEmail))
}

func TestSignIn_InvalidCredentials(t *testing.T) {
	f := newFixture()
	f.identity.err = common.ErrInvalidCredentials

	_, err := f.srv.SignIn(context.Background(), &structpb.Struct{})
	st := requireCode(t, err, codes.Unauthenticated)
	assert.Equal(t, "invalid login credentials", st.Message())
}

func TestRefreshSession(t *testing.T) {
	f := newFixture()
	f.identity.session = &services.Session{
		Account: testAccount(),
		Tokens:  &models.TokenPair{AccessToken: "a2", RefreshToken: "r2", ExpiresAt: time.Now()},
	}

	resp, err := f.srv.RefreshSession(context.Background(), mustStruct(t, map[string]any{pb.FieldRefreshToken: "r1"}))
	require.NoError(t, err)
	assert.Equal(t, "r1", f.identity.gotToken)
	assert.Equal(t, "r2", pb.String(resp, pb.FieldRefreshToken))

	f.identity.err = fmt.Errorf("rotate: %w", common.ErrRefreshTokenExpired)
	_, err = f.srv.RefreshSession(context.Background(), mustStruct(t, map[string]any{pb.FieldRefreshToken: "r1"}))
	st := requireCode(t, err, codes.Unauthenticated)
	assert.Equal(t, common.ErrRefreshTokenExpired.Error(), st.Message())
}

func TestSignOut(t *testing.T) {
	f := newFixture()

	_, err := f.srv.SignOut(context.Background(), mustStruct(t, map[string]any{pb.FieldRefreshToken: "r1"}))
	require.NoError(t, err)
	assert.Equal(t, "r1", f.identity.gotToken)
}

func TestGetIdentity(t *testing.T) {
	f := newFixture()
	f.identity.account = testAccount()

	resp, err := f.srv.GetIdentity(withClaims(context.Background(), testUserID, auth.ScopeAccess), &structpb.Struct{})
	require.NoError(t, err)
	assert.Equal(t, testUserID, f.identity.gotID)
	assert.Equal(t, testUserID, pb.String(pb.Struct(resp, pb.FieldIdentity), pb.FieldID))

	_, err = f.srv.GetIdentity(withAuthError(context.Background(), common.ErrTokenExpired), &structpb.Struct{})
	st := requireCode(t, err, codes.Unauthenticated)
	assert.Equal(t, "token expired", st.Message())
}

func TestInsertProfile(t *testing.T) {
	f := newFixture()
	req := mustStruct(t, map[string]any{
		pb.FieldID:                 testUserID,
		pb.FieldFullName:           "Jane Doe",
		pb.FieldSecurityQuestion:   "What is your favorite color?",
		pb.FieldSecurityAnswerHash: "abc",
	})

	_, err := f.srv.InsertProfile(withClaims(context.Background(), testUserID, auth.ScopeProvision), req)
	require.NoError(t, err)
	require.NotNil(t, f.profiles.profile)
	assert.Equal(t, "Jane Doe", f.profiles.profile.FullName)
	assert.Equal(t, "abc", f.profiles.profile.SecurityAnswerHash)
}

func TestInsertProfile_SubjectMismatch(t *testing.T) {
	f := newFixture()
	req := mustStruct(t, map[string]any{pb.FieldID: "someone-else"})

	_, err := f.srv.InsertProfile(withClaims(context.Background(), testUserID, auth.ScopeAccess), req)
	requireCode(t, err, codes.PermissionDenied)
	assert.Nil(t, f.profiles.profile)
}

func TestInsertProfile_ValidationAndDuplicate(t *testing.T) {
	f := newFixture()
	req := mustStruct(t, map[string]any{pb.FieldID: testUserID})
	ctx := withClaims(context.Background(), testUserID, auth.ScopeProvision)

	f.profiles.err = fmt.Errorf("%w: invalid securityquestion", common.ErrorValidation)
	_, err := f.srv.InsertProfile(ctx, req)
	requireCode(t, err, codes.InvalidArgument)

	f.profiles.err = common.ErrorAlreadyExists
	_, err = f.srv.InsertProfile(ctx, req)
	requireCode(t, err, codes.AlreadyExists)
}

func TestUpdateLastLogin(t *testing.T) {
	f := newFixture()
	at := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)

	_, err := f.srv.UpdateLastLogin(withClaims(context.Background(), testUserID, auth.ScopeAccess), mustStruct(t, map[string]any{
		pb.FieldID:        testUserID,
		pb.FieldLastLogin: pb.FormatTime(at),
	}))
	require.NoError(t, err)
	assert.Equal(t, testUserID, f.profiles.gotID)
	assert.True(t, at.Equal(f.profiles.gotAt))

	f.profiles.err = common.ErrorNotFound
	_, err = f.srv.UpdateLastLogin(withClaims(context.Background(), testUserID, auth.ScopeAccess), mustStruct(t, map[string]any{
		pb.FieldID: testUserID,
	}))
	requireCode(t, err, codes.NotFound)
}

func callReq(t *testing.T, name string, args map[string]any) *structpb.Struct {
	t.Helper()
	if args == nil {
		args = map[string]any{}
	}
	return mustStruct(t, map[string]any{pb.FieldName: name, pb.FieldArgs: args})
}

func TestCall_GetSecurityQuestion(t *testing.T) {
	f := newFixture()
	f.recovery.question = "What is your favorite color?"

	v, err := f.srv.Call(context.Background(), callReq(t, pb.ProcGetSecurityQuestion, map[string]any{pb.FieldUserEmail: "jane@example.com"}))
	require.NoError(t, err)
	assert.Equal(t, "What is your favorite color?", v.GetStringValue())
	assert.Equal(t, "jane@example.com", f.recovery.gotEmail)

	f.recovery.err = common.ErrorNotFound
	_, err = f.srv.Call(context.Background(), callReq(t, pb.ProcGetSecurityQuestion, nil))
	requireCode(t, err, codes.NotFound)
}

func TestCall_VerifySecurityAnswer(t *testing.T) {
	f := newFixture()
	f.recovery.ok = true

	v, err := f.srv.Call(context.Background(), callReq(t, pb.ProcVerifySecurityAnswer, map[string]any{
		pb.FieldUserEmail:  "jane@example.com",
		pb.FieldAnswerHash: "digest",
	}))
	require.NoError(t, err)
	assert.True(t, v.GetBoolValue())
	assert.Equal(t, "digest", f.recovery.gotDigest)

	f.recovery.err = common.ErrTooManyAttempts
	_, err = f.srv.Call(context.Background(), callReq(t, pb.ProcVerifySecurityAnswer, nil))
	requireCode(t, err, codes.ResourceExhausted)
}

func TestCall_ResetPasswordWithSecurity(t *testing.T) {
	f := newFixture()

	_, err := f.srv.Call(context.Background(), callReq(t, pb.ProcResetPasswordWithSecurity, map[string]any{
		pb.FieldUserEmail:   "jane@example.com",
		pb.FieldAnswerHash:  "digest",
		pb.FieldNewPassword: "newsecret",
	}))
	require.NoError(t, err)
	assert.Equal(t, "newsecret", f.recovery.gotPass)

	f.recovery.err = common.ErrInvalidSecurityAnswer
	_, err = f.srv.Call(context.Background(), callReq(t, pb.ProcResetPasswordWithSecurity, nil))
	requireCode(t, err, codes.PermissionDenied)
}

func TestCall_AvatarUploadURL(t *testing.T) {
	f := newFixture()
	f.avatars.upload = &services.AvatarUpload{Key: "avatars/x/y", URL: "http://s3/put"}

	v, err := f.srv.Call(withClaims(context.Background(), testUserID, auth.ScopeAccess), callReq(t, pb.ProcAvatarUploadURL, nil))
	require.NoError(t, err)
	assert.Equal(t, testUserID, f.avatars.gotID)
	m, ok := v.AsInterface().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "http://s3/put", m[pb.FieldURL])
	assert.Equal(t, "avatars/x/y", m[pb.FieldKey])
}

func TestCall_AvatarUploadURL_NeedsAccessToken(t *testing.T) {
	f := newFixture()

	_, err := f.srv.Call(withAuthError(context.Background(), errMissingToken), callReq(t, pb.ProcAvatarUploadURL, nil))
	requireCode(t, err, codes.Unauthenticated)

	_, err = f.srv.Call(withClaims(context.Background(), testUserID, auth.ScopeProvision), callReq(t, pb.ProcAvatarUploadURL, nil))
	requireCode(t, err, codes.PermissionDenied)
	assert.Empty(t, f.avatars.gotID)
}

func TestCall_UnknownProcedure(t *testing.T) {
	f := newFixture()

	_, err := f.srv.Call(context.Background(), callReq(t, "drop_tables", nil))
	requireCode(t, err, codes.InvalidArgument)
}
