package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/dmitrijs2005/resourcehub/internal/client/models"
	"github.com/dmitrijs2005/resourcehub/internal/common"
	pb "github.com/dmitrijs2005/resourcehub/internal/identitypb"
	"github.com/dmitrijs2005/resourcehub/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// GRPCClient implements Client over the identity service gRPC API.
type GRPCClient struct {
	endpointURL string
	apiKey      string
	dialOpts    []grpc.DialOption
	conn        *grpc.ClientConn
	client      pb.IdentityServiceClient
	cache       SessionCache
	logger      logging.Logger
	now         func() time.Time
	events      *broker

	mu      sync.RWMutex
	session *models.Session
	loaded  bool

	// serializes refreshes so a rotated refresh token is never reused
	refreshMu sync.Mutex
}

// Option configures a GRPCClient.
type Option func(*GRPCClient)

// WithSessionCache persists sessions through cache.
func WithSessionCache(cache SessionCache) Option {
	return func(c *GRPCClient) { c.cache = cache }
}

func WithLogger(l logging.Logger) Option {
	return func(c *GRPCClient) { c.logger = l.With("module", "identity_client") }
}

func WithClock(now func() time.Time) Option {
	return func(c *GRPCClient) { c.now = now }
}

// WithDialOptions appends extra dial options, e.g. a bufconn dialer in tests.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *GRPCClient) { c.dialOpts = append(c.dialOpts, opts...) }
}

// NewIdentityClient connects to the identity service at endpointURL,
// presenting apiKey on every call. endpointURL may be "host:port" or a
// http(s)/grpc URL.
func NewIdentityClient(endpointURL, apiKey string, opts ...Option) (*GRPCClient, error) {
	c := &GRPCClient{
		endpointURL: endpointURL,
		apiKey:      apiKey,
		logger:      logging.NopLogger{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.initGRPCClient(); err != nil {
		return nil, err
	}
	c.events = newBroker()
	return c, nil
}

func (c *GRPCClient) initGRPCClient() error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(c.apiKeyInterceptor, c.accessTokenInterceptor),
	}, c.dialOpts...)

	conn, err := grpc.NewClient(dialTarget(c.endpointURL), opts...)
	if err != nil {
		return err
	}
	c.conn = conn
	c.client = pb.NewIdentityServiceClient(conn)
	return nil
}

// dialTarget strips web-style schemes; anything else is a gRPC target.
func dialTarget(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	switch u.Scheme {
	case "http", "https", "grpc":
		return u.Host
	default:
		return endpoint
	}
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func hasAccessToken(ctx context.Context) bool {
	md, ok := metadata.FromOutgoingContext(ctx)
	return ok && len(md.Get(common.AccessTokenHeaderName)) > 0
}

func (c *GRPCClient) apiKeyInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	ctx = metadata.AppendToOutgoingContext(ctx, common.APIKeyHeaderName, c.apiKey)
	return invoker(ctx, method, req, reply, cc, opts...)
}

// accessTokenInterceptor attaches the session token unless the caller set
// one explicitly. A "token expired" rejection triggers one refresh and one
// retry.
func (c *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if hasAccessToken(ctx) {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	s := c.current(ctx)
	if s == nil {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	err := invoker(withAccessToken(ctx, s.AccessToken), method, req, reply, cc, opts...)
	if err == nil || method == pb.RefreshSessionMethod {
		return err
	}

	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}

	refreshed, rerr := c.refresh(ctx, s.AccessToken)
	if rerr != nil {
		return err
	}
	return invoker(withAccessToken(ctx, refreshed.AccessToken), method, req, reply, cc, opts...)
}

// current returns the in-memory session, loading the persisted one on first use.
func (c *GRPCClient) current(ctx context.Context) *models.Session {
	c.mu.RLock()
	if c.loaded {
		s := c.session
		c.mu.RUnlock()
		return s
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		if c.cache != nil {
			s, err := c.cache.Load(ctx)
			if err != nil {
				c.logger.Warn(ctx, "failed to load persisted session", "error", err)
			}
			c.session = s
		}
		c.loaded = true
	}
	return c.session
}

// setSession replaces the session, persists it and publishes kind.
func (c *GRPCClient) setSession(ctx context.Context, s *models.Session, kind models.SessionEventKind) {
	c.mu.Lock()
	c.session = s
	c.loaded = true
	c.mu.Unlock()

	if c.cache != nil {
		var err error
		if s == nil {
			err = c.cache.Clear(ctx)
		} else {
			err = c.cache.Save(ctx, s)
		}
		if err != nil {
			c.logger.Warn(ctx, "failed to persist session", "error", err)
		}
	}

	c.events.publish(models.SessionEvent{Kind: kind, Session: s})
}

func (c *GRPCClient) CreateAccount(ctx context.Context, email, password string, meta map[string]string) (*models.Identity, string, error) {
	req, err := pb.NewStruct(map[string]any{
		pb.FieldEmail:    email,
		pb.FieldPassword: password,
		pb.FieldMetadata: meta,
	})
	if err != nil {
		return nil, "", fmt.Errorf("encode request: %w", err)
	}

	resp, err := c.client.CreateAccount(ctx, req)
	if err != nil {
		return nil, "", c.mapError(err)
	}

	identity := decodeIdentity(pb.Struct(resp, pb.FieldIdentity))
	if identity == nil || identity.ID == "" {
		return nil, "", errors.New("malformed create account response")
	}
	return identity, pb.String(resp, pb.FieldProvisioningToken), nil
}

func (c *GRPCClient) DeleteAccount(ctx context.Context, provisioningToken string) error {
	if _, err := c.client.DeleteAccount(withAccessToken(ctx, provisioningToken), &structpb.Struct{}); err != nil {
		return c.mapError(err)
	}
	return nil
}

func (c *GRPCClient) SignInWithPassword(ctx context.Context, email, password string) (*models.Session, error) {
	req, err := pb.NewStruct(map[string]any{pb.FieldEmail: email, pb.FieldPassword: password})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	resp, err := c.client.SignIn(ctx, req)
	if err != nil {
		return nil, c.mapError(err)
	}

	s := decodeSession(resp)
	if s.Identity == nil || s.AccessToken == "" {
		return nil, errors.New("malformed sign in response")
	}
	c.setSession(ctx, s, models.EventSignedIn)
	return s, nil
}

// SignOut revokes the refresh token remotely and always clears local state.
// A rejected (already invalid) token is not an error.
func (c *GRPCClient) SignOut(ctx context.Context) error {
	s := c.current(ctx)
	if s == nil {
		return nil
	}

	req, err := pb.NewStruct(map[string]any{pb.FieldRefreshToken: s.RefreshToken})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	_, rpcErr := c.client.SignOut(ctx, req)

	c.setSession(ctx, nil, models.EventSignedOut)

	if rpcErr != nil {
		mapped := c.mapError(rpcErr)
		if errors.Is(mapped, ErrUnauthorized) {
			return nil
		}
		return mapped
	}
	return nil
}

// GetSession returns the current session, refreshing it once if expired.
// A session the service no longer accepts is cleared and nil is returned.
func (c *GRPCClient) GetSession(ctx context.Context) (*models.Session, error) {
	s := c.current(ctx)
	if s == nil {
		return nil, nil
	}
	if !s.Expired(c.now()) {
		return s, nil
	}

	refreshed, err := c.refresh(ctx, s.AccessToken)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			c.setSession(ctx, nil, models.EventSignedOut)
			return nil, nil
		}
		return nil, err
	}
	return refreshed, nil
}

func (c *GRPCClient) RefreshSession(ctx context.Context) (*models.Session, error) {
	return c.refresh(ctx, "")
}

// refresh rotates the session. When stale is non-empty and the current
// access token already differs from it, another caller has refreshed in the
// meantime and the current session is returned as is.
func (c *GRPCClient) refresh(ctx context.Context, stale string) (*models.Session, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	s := c.current(ctx)
	if s == nil {
		return nil, ErrNoSession
	}
	if stale != "" && s.AccessToken != stale {
		return s, nil
	}

	req, err := pb.NewStruct(map[string]any{pb.FieldRefreshToken: s.RefreshToken})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	resp, err := c.client.RefreshSession(ctx, req)
	if err != nil {
		return nil, c.mapError(err)
	}

	next := decodeSession(resp)
	if next.Identity == nil {
		next.Identity = s.Identity
	}
	c.setSession(ctx, next, models.EventTokenRefreshed)
	return next, nil
}

func (c *GRPCClient) OnSessionChange(fn func(models.SessionEvent)) Subscription {
	return c.events.subscribe(fn)
}

func (c *GRPCClient) Call(ctx context.Context, name string, args map[string]any) (any, error) {
	if args == nil {
		args = map[string]any{}
	}
	req, err := pb.NewStruct(map[string]any{pb.FieldName: name, pb.FieldArgs: args})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	resp, err := c.client.Call(ctx, req)
	if err != nil {
		return nil, c.mapError(err)
	}
	return resp.AsInterface(), nil
}

func (c *GRPCClient) InsertProfile(ctx context.Context, token string, p *models.Profile) error {
	if token != "" {
		ctx = withAccessToken(ctx, token)
	}
	req, err := pb.NewStruct(map[string]any{
		pb.FieldID:                 p.ID,
		pb.FieldFullName:           p.FullName,
		pb.FieldSecurityQuestion:   p.SecurityQuestion,
		pb.FieldSecurityAnswerHash: p.SecurityAnswerHash,
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	if _, err := c.client.InsertProfile(ctx, req); err != nil {
		return c.mapError(err)
	}
	return nil
}

func (c *GRPCClient) UpdateLastLogin(ctx context.Context, identityID string, at time.Time) error {
	req, err := pb.NewStruct(map[string]any{
		pb.FieldID:        identityID,
		pb.FieldLastLogin: pb.FormatTime(at),
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	if _, err := c.client.UpdateLastLogin(ctx, req); err != nil {
		return c.mapError(err)
	}
	return nil
}

func (c *GRPCClient) Close() error {
	c.events.close()
	return c.conn.Close()
}

func (c *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return fmt.Errorf("rpc error: %w", err)
	}
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied,
		codes.InvalidArgument, codes.AlreadyExists, codes.NotFound,
		codes.FailedPrecondition, codes.ResourceExhausted:
		return &RemoteError{Code: st.Code(), Message: st.Message()}
	case codes.Unavailable:
		return ErrUnavailable
	case codes.DeadlineExceeded:
		return ErrTimeout
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func decodeIdentity(s *structpb.Struct) *models.Identity {
	if s == nil {
		return nil
	}
	return &models.Identity{
		ID:        pb.String(s, pb.FieldID),
		Email:     pb.String(s, pb.FieldEmail),
		FullName:  pb.String(s, pb.FieldFullName),
		AvatarKey: pb.String(s, pb.FieldAvatarKey),
		Metadata:  pb.StringMap(pb.Struct(s, pb.FieldMetadata)),
	}
}

func decodeSession(s *structpb.Struct) *models.Session {
	return &models.Session{
		Identity:     decodeIdentity(pb.Struct(s, pb.FieldIdentity)),
		AccessToken:  pb.String(s, pb.FieldAccessToken),
		RefreshToken: pb.String(s, pb.FieldRefreshToken),
		ExpiresAt:    pb.Time(s, pb.FieldExpiresAt),
	}
}
