package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/resourcehub/internal/logging"
	pb "github.com/dmitrijs2005/resourcehub/internal/identitypb"
	"github.com/dmitrijs2005/resourcehub/internal/server/metrics"
	"github.com/dmitrijs2005/resourcehub/internal/server/models"
	"github.com/dmitrijs2005/resourcehub/internal/server/services"
	"google.golang.org/grpc"
)

// IdentityService is the account and session part of the backend.
type IdentityService interface {
	CreateAccount(ctx context.Context, email, password string, meta map[string]string) (*models.Account, string, error)
	DeleteAccount(ctx context.Context, accountID string) error
	SignIn(ctx context.Context, email, password string) (*services.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*services.Session, error)
	SignOut(ctx context.Context, refreshToken string) error
	GetIdentity(ctx context.Context, accountID string) (*models.Account, error)
}

type ProfileService interface {
	InsertProfile(ctx context.Context, p *models.Profile) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

type RecoveryService interface {
	GetSecurityQuestion(ctx context.Context, email string) (string, error)
	VerifySecurityAnswer(ctx context.Context, email, digest string) (bool, error)
	ResetPasswordWithSecurity(ctx context.Context, email, digest, newPassword string) error
}

type AvatarService interface {
	UploadURL(ctx context.Context, accountID string) (*services.AvatarUpload, error)
}

// Services bundles the backends the gRPC layer dispatches to.
type Services struct {
	Identity IdentityService
	Profiles ProfileService
	Recovery RecoveryService
	Avatars  AvatarService
}

type GRPCServer struct {
	pb.UnimplementedIdentityServiceServer
	address   string
	identity  IdentityService
	profiles  ProfileService
	recovery  RecoveryService
	avatars   AvatarService
	metrics   *metrics.Metrics
	logger    logging.Logger
	apiKey    string
	jwtSecret []byte
}

// NewGRPCServer builds the server. m may be nil, in which case no
// operation metrics are recorded.
func NewGRPCServer(a string, l logging.Logger, svc Services, m *metrics.Metrics, apiKey, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		identity:  svc.Identity,
		profiles:  svc.Profiles,
		recovery:  svc.Recovery,
		avatars:   svc.Avatars,
		metrics:   m,
		apiKey:    apiKey,
		jwtSecret: []byte(secretKey),
	}
}

func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		s.metricsInterceptor,
		s.apiKeyInterceptor,
		s.accessTokenInterceptor,
	))
	pb.RegisterIdentityServiceServer(srv, s)
	return srv
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
