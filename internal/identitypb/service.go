// Package identitypb declares the gRPC contract of the identity service.
//
// Messages are google.protobuf.Struct values rather than generated types;
// the field names below are the wire schema shared by client and server.
// The descriptor and stubs follow the shape protoc-gen-go-grpc produces.
package identitypb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "identity.v1.IdentityService"

// Full method names.
const (
	CreateAccountMethod   = "/" + ServiceName + "/CreateAccount"
	DeleteAccountMethod   = "/" + ServiceName + "/DeleteAccount"
	SignInMethod          = "/" + ServiceName + "/SignIn"
	SignOutMethod         = "/" + ServiceName + "/SignOut"
	RefreshSessionMethod  = "/" + ServiceName + "/RefreshSession"
	GetIdentityMethod     = "/" + ServiceName + "/GetIdentity"
	InsertProfileMethod   = "/" + ServiceName + "/InsertProfile"
	UpdateLastLoginMethod = "/" + ServiceName + "/UpdateLastLogin"
	CallMethod            = "/" + ServiceName + "/Call"
)

// Remote procedure names accepted by Call.
const (
	ProcGetSecurityQuestion       = "get_security_question"
	ProcVerifySecurityAnswer      = "verify_security_answer"
	ProcResetPasswordWithSecurity = "reset_password_with_security"
	ProcAvatarUploadURL           = "avatar_upload_url"
)

// IdentityServiceClient is the client API for the identity service.
type IdentityServiceClient interface {
	CreateAccount(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	DeleteAccount(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SignIn(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SignOut(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RefreshSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetIdentity(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	InsertProfile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	UpdateLastLogin(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	Call(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Value, error)
}

type identityServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewIdentityServiceClient(cc grpc.ClientConnInterface) IdentityServiceClient {
	return &identityServiceClient{cc: cc}
}

func (c *identityServiceClient) invokeStruct(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *identityServiceClient) CreateAccount(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, CreateAccountMethod, in, opts...)
}

func (c *identityServiceClient) DeleteAccount(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, DeleteAccountMethod, in, opts...)
}

func (c *identityServiceClient) SignIn(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, SignInMethod, in, opts...)
}

func (c *identityServiceClient) SignOut(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, SignOutMethod, in, opts...)
}

func (c *identityServiceClient) RefreshSession(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, RefreshSessionMethod, in, opts...)
}

func (c *identityServiceClient) GetIdentity(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, GetIdentityMethod, in, opts...)
}

func (c *identityServiceClient) InsertProfile(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, InsertProfileMethod, in, opts...)
}

func (c *identityServiceClient) UpdateLastLogin(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invokeStruct(ctx, UpdateLastLoginMethod, in, opts...)
}

func (c *identityServiceClient) Call(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Value, error) {
	out := new(structpb.Value)
	if err := c.cc.Invoke(ctx, CallMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// IdentityServiceServer is the server API for the identity service.
type IdentityServiceServer interface {
	CreateAccount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteAccount(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignIn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignOut(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RefreshSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetIdentity(context.Context, *structpb.Struct) (*structpb.Struct, error)
	InsertProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateLastLogin(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Call(context.Context, *structpb.Struct) (*structpb.Value, error)
}

// UnimplementedIdentityServiceServer can be embedded to keep forward compatibility.
type UnimplementedIdentityServiceServer struct{}

func unimplemented(name string) error {
	return status.Errorf(codes.Unimplemented, "method %s not implemented", name)
}

func (UnimplementedIdentityServiceServer) CreateAccount(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("CreateAccount")
}
func (UnimplementedIdentityServiceServer) DeleteAccount(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("DeleteAccount")
}
func (UnimplementedIdentityServiceServer) SignIn(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("SignIn")
}
func (UnimplementedIdentityServiceServer) SignOut(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("SignOut")
}
func (UnimplementedIdentityServiceServer) RefreshSession(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("RefreshSession")
}
func (UnimplementedIdentityServiceServer) GetIdentity(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("GetIdentity")
}
func (UnimplementedIdentityServiceServer) InsertProfile(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("InsertProfile")
}
func (UnimplementedIdentityServiceServer) UpdateLastLogin(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, unimplemented("UpdateLastLogin")
}
func (UnimplementedIdentityServiceServer) Call(context.Context, *structpb.Struct) (*structpb.Value, error) {
	return nil, unimplemented("Call")
}

// RegisterIdentityServiceServer registers srv on s.
func RegisterIdentityServiceServer(s grpc.ServiceRegistrar, srv IdentityServiceServer) {
	s.RegisterService(&IdentityService_ServiceDesc, srv)
}

// unaryHandler adapts a typed server method to grpc.MethodHandler.
func unaryHandler[R proto.Message](fullMethod string, call func(IdentityServiceServer, context.Context, *structpb.Struct) (R, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(IdentityServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(IdentityServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// IdentityService_ServiceDesc is the grpc.ServiceDesc for the identity service.
var IdentityService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IdentityServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateAccount", Handler: unaryHandler(CreateAccountMethod, IdentityServiceServer.CreateAccount)},
		{MethodName: "DeleteAccount", Handler: unaryHandler(DeleteAccountMethod, IdentityServiceServer.DeleteAccount)},
		{MethodName: "SignIn", Handler: unaryHandler(SignInMethod, IdentityServiceServer.SignIn)},
		{MethodName: "SignOut", Handler: unaryHandler(SignOutMethod, IdentityServiceServer.SignOut)},
		{MethodName: "RefreshSession", Handler: unaryHandler(RefreshSessionMethod, IdentityServiceServer.RefreshSession)},
		{MethodName: "GetIdentity", Handler: unaryHandler(GetIdentityMethod, IdentityServiceServer.GetIdentity)},
		{MethodName: "InsertProfile", Handler: unaryHandler(InsertProfileMethod, IdentityServiceServer.InsertProfile)},
		{MethodName: "UpdateLastLogin", Handler: unaryHandler(UpdateLastLoginMethod, IdentityServiceServer.UpdateLastLogin)},
		{MethodName: "Call", Handler: unaryHandler(CallMethod, IdentityServiceServer.Call)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "identity/v1/identity.proto",
}
