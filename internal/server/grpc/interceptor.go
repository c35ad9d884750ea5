package grpc

import (
	"context"
	"crypto/subtle"
	"errors"
	"path"

	"github.com/dmitrijs2005/resourcehub/internal/common"
	pb "github.com/dmitrijs2005/resourcehub/internal/identitypb"
	"github.com/dmitrijs2005/resourcehub/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type ctxKey string

const authInfoKey ctxKey = "authInfo"

var errMissingToken = errors.New("missing token")

// authInfo is the outcome of parsing the request token.
type authInfo struct {
	claims *auth.Claims
	err    error
}

// methodScopes lists the methods that need a token and the scopes each
// accepts. Call checks per procedure in its handler.
var methodScopes = map[string][]auth.Scope{
	pb.DeleteAccountMethod:   {auth.ScopeProvision},
	pb.GetIdentityMethod:     {auth.ScopeAccess},
	pb.InsertProfileMethod:   {auth.ScopeProvision, auth.ScopeAccess},
	pb.UpdateLastLoginMethod: {auth.ScopeAccess},
}

var procedures = map[string]bool{
	pb.ProcGetSecurityQuestion:       true,
	pb.ProcVerifySecurityAnswer:      true,
	pb.ProcResetPasswordWithSecurity: true,
	pb.ProcAvatarUploadURL:           true,
}

func metadataValue(ctx context.Context, key string) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(key)
		if len(values) > 0 {
			return values[0]
		}
	}
	return ""
}

func (s *GRPCServer) apiKeyInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	key := metadataValue(ctx, common.APIKeyHeaderName)
	if key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.apiKey)) != 1 {
		return nil, status.Error(codes.Unauthenticated, "invalid api key")
	}
	return handler(ctx, req)
}

// accessTokenInterceptor parses the access_token metadata, when present,
// and rejects calls to methods in methodScopes that lack a fitting token.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	a := authInfo{err: errMissingToken}
	if token := metadataValue(ctx, common.AccessTokenHeaderName); token != "" {
		claims, err := auth.ParseToken(token, s.jwtSecret)
		a = authInfo{claims: claims, err: err}
	}
	ctx = context.WithValue(ctx, authInfoKey, a)

	if scopes, ok := methodScopes[info.FullMethod]; ok {
		if _, err := requireClaims(ctx, scopes...); err != nil {
			return nil, err
		}
	}

	return handler(ctx, req)
}

// requireClaims returns the token claims stored by accessTokenInterceptor
// if the token is valid and carries one of scopes.
func requireClaims(ctx context.Context, scopes ...auth.Scope) (*auth.Claims, error) {
	a, ok := ctx.Value(authInfoKey).(authInfo)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, errMissingToken.Error())
	}

	switch {
	case errors.Is(a.err, errMissingToken):
		return nil, status.Error(codes.Unauthenticated, errMissingToken.Error())
	case errors.Is(a.err, common.ErrTokenExpired):
		return nil, status.Error(codes.Unauthenticated, common.ErrTokenExpired.Error())
	case a.err != nil || a.claims == nil:
		return nil, status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
	}

	if !a.claims.Allows(scopes...) {
		return nil, status.Error(codes.PermissionDenied, "token scope not allowed")
	}
	return a.claims, nil
}

// operationName is the metrics label of a call: the method name, or the
// procedure for known Call procedures.
func operationName(fullMethod string, req interface{}) string {
	name := path.Base(fullMethod)
	if fullMethod == pb.CallMethod {
		if in, ok := req.(*structpb.Struct); ok {
			if proc := pb.String(in, pb.FieldName); procedures[proc] {
				return proc
			}
		}
	}
	return name
}

func (s *GRPCServer) metricsInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	resp, err := handler(ctx, req)
	if s.metrics != nil {
		s.metrics.ObserveOperation(operationName(info.FullMethod, req), status.Code(err).String())
	}
	return resp, err
}
