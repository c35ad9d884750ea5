package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/resourcehub/internal/common"
	pb "github.com/dmitrijs2005/resourcehub/internal/identitypb"
	"github.com/dmitrijs2005/resourcehub/internal/server/auth"
	"github.com/dmitrijs2005/resourcehub/internal/server/models"
	"github.com/dmitrijs2005/resourcehub/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) CreateAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	s.logger.Info(ctx, "Account creation request")

	meta := pb.StringMap(pb.Struct(req, pb.FieldMetadata))
	account, token, err := s.identity.CreateAccount(ctx, pb.String(req, pb.FieldEmail), pb.String(req, pb.FieldPassword), meta)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Account created", "account_id", account.ID)
	return respond(map[string]any{
		pb.FieldIdentity:          identityFields(account),
		pb.FieldProvisioningToken: token,
	})
}

func (s *GRPCServer) DeleteAccount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	claims, err := requireClaims(ctx, auth.ScopeProvision)
	if err != nil {
		return nil, err
	}

	if err := s.identity.DeleteAccount(ctx, claims.UserID); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	s.logger.Info(ctx, "Account deleted", "account_id", claims.UserID)
	return &structpb.Struct{}, nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	session, err := s.identity.SignIn(ctx, pb.String(req, pb.FieldEmail), pb.String(req, pb.FieldPassword))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return respond(sessionFields(session))
}

func (s *GRPCServer) SignOut(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	if err := s.identity.SignOut(ctx, pb.String(req, pb.FieldRefreshToken)); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &structpb.Struct{}, nil
}

func (s *GRPCServer) RefreshSession(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	session, err := s.identity.RefreshSession(ctx, pb.String(req, pb.FieldRefreshToken))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return respond(sessionFields(session))
}

func (s *GRPCServer) GetIdentity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	claims, err := requireClaims(ctx, auth.ScopeAccess)
	if err != nil {
		return nil, err
	}

	account, err := s.identity.GetIdentity(ctx, claims.UserID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return respond(map[string]any{pb.FieldIdentity: identityFields(account)})
}

func (s *GRPCServer) InsertProfile(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	claims, err := requireClaims(ctx, auth.ScopeProvision, auth.ScopeAccess)
	if err != nil {
		return nil, err
	}

	id := pb.String(req, pb.FieldID)
	if id != claims.UserID {
		return nil, status.Error(codes.PermissionDenied, "token does not match identity")
	}

	profile := &models.Profile{
		ID:                 id,
		FullName:           pb.String(req, pb.FieldFullName),
		SecurityQuestion:   pb.String(req, pb.FieldSecurityQuestion),
		SecurityAnswerHash: pb.String(req, pb.FieldSecurityAnswerHash),
	}
	if err := s.profiles.InsertProfile(ctx, profile); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &structpb.Struct{}, nil
}

func (s *GRPCServer) UpdateLastLogin(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {

	claims, err := requireClaims(ctx, auth.ScopeAccess)
	if err != nil {
		return nil, err
	}

	id := pb.String(req, pb.FieldID)
	if id != claims.UserID {
		return nil, status.Error(codes.PermissionDenied, "token does not match identity")
	}

	if err := s.profiles.UpdateLastLogin(ctx, id, pb.Time(req, pb.FieldLastLogin)); err != nil {
		return nil, s.toStatus(ctx, err)
	}

	return &structpb.Struct{}, nil
}

// Call runs one of the named remote procedures with the given args.
func (s *GRPCServer) Call(ctx context.Context, req *structpb.Struct) (*structpb.Value, error) {

	name := pb.String(req, pb.FieldName)
	args := pb.Struct(req, pb.FieldArgs)
	email := pb.String(args, pb.FieldUserEmail)

	switch name {
	case pb.ProcGetSecurityQuestion:
		q, err := s.recovery.GetSecurityQuestion(ctx, email)
		if err != nil {
			return nil, s.toStatus(ctx, err)
		}
		return structpb.NewStringValue(q), nil

	case pb.ProcVerifySecurityAnswer:
		ok, err := s.recovery.VerifySecurityAnswer(ctx, email, pb.String(args, pb.FieldAnswerHash))
		if err != nil {
			return nil, s.toStatus(ctx, err)
		}
		return structpb.NewBoolValue(ok), nil

	case pb.ProcResetPasswordWithSecurity:
		err := s.recovery.ResetPasswordWithSecurity(ctx, email, pb.String(args, pb.FieldAnswerHash), pb.String(args, pb.FieldNewPassword))
		if err != nil {
			return nil, s.toStatus(ctx, err)
		}
		return structpb.NewBoolValue(true), nil

	case pb.ProcAvatarUploadURL:
		claims, err := requireClaims(ctx, auth.ScopeAccess)
		if err != nil {
			return nil, err
		}
		upload, err := s.avatars.UploadURL(ctx, claims.UserID)
		if err != nil {
			return nil, s.toStatus(ctx, err)
		}
		out, err := structpb.NewStruct(map[string]any{pb.FieldKey: upload.Key, pb.FieldURL: upload.URL})
		if err != nil {
			return nil, s.toStatus(ctx, err)
		}
		return structpb.NewStructValue(out), nil

	default:
		return nil, status.Errorf(codes.InvalidArgument, "unknown procedure %q", name)
	}
}

// toStatus maps service errors to gRPC statuses. Unknown errors are logged
// and reported as internal without detail.
func (s *GRPCServer) toStatus(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		msg := strings.TrimPrefix(err.Error(), common.ErrorValidation.Error()+": ")
		return status.Error(codes.InvalidArgument, msg)
	case errors.Is(err, common.ErrorAlreadyExists):
		return status.Error(codes.AlreadyExists, "account already exists")
	case errors.Is(err, common.ErrorNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired),
		errors.Is(err, common.ErrInvalidToken):
		return status.Error(codes.Unauthenticated, unwrapSentinel(err))
	case errors.Is(err, common.ErrTooManyAttempts):
		return status.Error(codes.ResourceExhausted, common.ErrTooManyAttempts.Error())
	case errors.Is(err, common.ErrInvalidSecurityAnswer):
		return status.Error(codes.PermissionDenied, common.ErrInvalidSecurityAnswer.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		return status.Error(codes.PermissionDenied, common.ErrorUnauthorized.Error())
	}

	s.logger.Error(ctx, "request failed", "error", err)
	return status.Error(codes.Internal, common.ErrorInternal.Error())
}

// unwrapSentinel returns the message of the auth sentinel err matches.
func unwrapSentinel(err error) string {
	for _, target := range []error{
		common.ErrInvalidCredentials,
		common.ErrTokenExpired,
		common.ErrRefreshTokenExpired,
		common.ErrInvalidToken,
	} {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}

func respond(fields map[string]any) (*structpb.Struct, error) {
	out, err := pb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode response")
	}
	return out, nil
}

func identityFields(a *models.Account) map[string]any {
	meta := make(map[string]any)
	for k, v := range a.Metadata() {
		meta[k] = v
	}
	return map[string]any{
		pb.FieldID:        a.ID,
		pb.FieldEmail:     a.Email,
		pb.FieldFullName:  a.FullName,
		pb.FieldAvatarKey: a.AvatarKey,
		pb.FieldMetadata:  meta,
	}
}

func sessionFields(s *services.Session) map[string]any {
	return map[string]any{
		pb.FieldIdentity:     identityFields(s.Account),
		pb.FieldAccessToken:  s.Tokens.AccessToken,
		pb.FieldRefreshToken: s.Tokens.RefreshToken,
		pb.FieldExpiresAt:    pb.FormatTime(s.Tokens.ExpiresAt),
	}
}
