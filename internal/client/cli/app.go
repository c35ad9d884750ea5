package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/resourcehub/internal/client/client"
	"github.com/dmitrijs2005/resourcehub/internal/client/config"
	"github.com/dmitrijs2005/resourcehub/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/resourcehub/internal/client/services"
	"github.com/dmitrijs2005/resourcehub/internal/client/session"
	"github.com/dmitrijs2005/resourcehub/internal/filex"
	"github.com/dmitrijs2005/resourcehub/internal/logging"
	"github.com/dmitrijs2005/resourcehub/internal/timeouts"
)

// sessionView is the read side of the session store.
type sessionView interface {
	State() session.Snapshot
}

type App struct {
	config      *config.Config
	authService services.AuthService
	store       *session.Store
	view        sessionView
	apiClient   *client.GRPCClient
	closers     []func() error
	logger      logging.Logger
	reader      *bufio.Reader
	out         io.Writer
}

// NewApp wires the CLI. When the identity service is not configured the app
// still starts, and every auth command reports that it is not configured.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	a := &App{
		config: c,
		logger: logger.With("module", "cli"),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	if !c.IsConfigured() {
		a.logger.Warn(ctx, "identity service not configured; set IDENTITY_SERVICE_URL and IDENTITY_SERVICE_KEY")
		a.authService = services.NewAuthService(nil, services.WithLogger(logger))
		a.store = session.New(nil, logger)
		a.view = a.store
		return a, nil
	}

	if err := filex.EnsureParentDir(c.DatabasePath); err != nil {
		return nil, fmt.Errorf("error preparing database directory: %w", err)
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	cache := client.NewMetadataSessionCache(metadata.NewSQLiteRepository(db))
	apiClient, err := client.NewIdentityClient(c.ServiceURL, c.ServiceKey,
		client.WithSessionCache(cache),
		client.WithLogger(logger),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.apiClient = apiClient
	a.closers = append([]func() error{apiClient.Close}, a.closers...)

	a.authService = services.NewAuthService(apiClient,
		services.WithTimeout(c.CallTimeout),
		services.WithLogger(logger),
	)
	a.store = session.New(apiClient, logger)
	a.view = a.store
	return a, nil
}

// Run restores the session, starts background refresh and blocks in the
// REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	a.store.Init(ctx, timeouts.SessionInit)

	if a.apiClient != nil {
		go a.apiClient.StartAutoRefresh(ctx, a.config.RefreshInterval, a.config.RefreshLead)
	}

	printlnFn("Welcome to resourcehub CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close releases the session store, the client and the database.
func (a *App) Close() error {
	if a.store != nil {
		a.store.Close()
	}
	var firstErr error
	for _, c := range a.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}

func (a *App) isLoggedIn() bool {
	return a.view != nil && a.view.State().Identity != nil
}

func (a *App) getStatus() string {
	if a.authService != nil && !a.authService.Configured() {
		return "(not configured)"
	}
	if a.view == nil {
		return ""
	}
	st := a.view.State()
	switch {
	case st.Loading:
		return "(loading)"
	case st.Identity != nil:
		return fmt.Sprintf("(%s)", strings.TrimSpace(st.Identity.Email))
	default:
		return ""
	}
}

func (a *App) say(args ...any) {
	fmt.Fprintln(a.out, args...)
}
