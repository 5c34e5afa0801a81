package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/artpar/querybench/internal/config"
	"github.com/artpar/querybench/internal/core"
	"github.com/artpar/querybench/internal/history"
	"github.com/artpar/querybench/internal/logging"
	"github.com/artpar/querybench/internal/panel"
	httpclient "github.com/artpar/querybench/internal/protocol/http"
)

// ErrRouteNotFound is returned when no configured route matches a name.
var ErrRouteNotFound = errors.New("route not found")

// Config holds application configuration.
type Config struct {
	BaseURL string
	// Timeout bounds each round trip. Zero means no timeout.
	Timeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: config.DefaultAPIURL,
	}
}

// App is the main application container with dependency injection.
type App struct {
	config    Config
	routes    []core.RouteConfig
	requester panel.Requester
	logger    *slog.Logger
	history   history.Store
}

// Option is a function that configures the App.
type Option func(*App)

// New creates a new App with the given options. Without WithRequester an
// HTTP client honouring Config.Timeout is used.
func New(opts ...Option) *App {
	app := &App{
		config: DefaultConfig(),
		routes: config.DefaultRoutes(),
		logger: logging.Nop(),
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.requester == nil {
		var clientOpts []httpclient.Option
		if app.config.Timeout > 0 {
			clientOpts = append(clientOpts, httpclient.WithTimeout(app.config.Timeout))
		}
		app.requester = httpclient.NewClient(clientOpts...)
	}

	return app
}

// WithConfig sets the application configuration.
func WithConfig(cfg Config) Option {
	return func(a *App) {
		a.config = cfg
	}
}

// WithRoutes replaces the default route table.
func WithRoutes(routes []core.RouteConfig) Option {
	return func(a *App) {
		a.routes = routes
	}
}

// WithRequester sets the transport used for every panel.
func WithRequester(r panel.Requester) Option {
	return func(a *App) {
		a.requester = r
	}
}

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l == nil {
			l = logging.Nop()
		}
		a.logger = l
	}
}

// WithHistory records every completed call in store.
func WithHistory(store history.Store) Option {
	return func(a *App) {
		a.history = store
	}
}

// Config returns the application configuration.
func (a *App) Config() Config {
	return a.config
}

// Routes returns the configured routes.
func (a *App) Routes() []core.RouteConfig {
	return a.routes
}

// Requester returns the transport.
func (a *App) Requester() panel.Requester {
	return a.requester
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// History returns the session history, or nil when none is configured.
func (a *App) History() history.Store {
	return a.history
}

// Panels builds one panel per configured route, in order.
func (a *App) Panels() ([]*panel.Panel, error) {
	panels := make([]*panel.Panel, 0, len(a.routes))
	for i, route := range a.routes {
		p, err := a.newPanel(route)
		if err != nil {
			return nil, fmt.Errorf("route %d: %w", i, err)
		}
		panels = append(panels, p)
	}
	return panels, nil
}

// Panel builds the panel for the route whose display name or route name
// matches name. Display names compare case-insensitively.
func (a *App) Panel(name string) (*panel.Panel, error) {
	for _, route := range a.routes {
		if route.RouteName == name || strings.EqualFold(route.DisplayName, name) {
			return a.newPanel(route)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrRouteNotFound, name)
}

func (a *App) newPanel(route core.RouteConfig) (*panel.Panel, error) {
	return panel.New(route, a.config.BaseURL, panel.WithObserver(&recorder{
		logger:  a.logger,
		history: a.history,
	}))
}

// Begin issues a call on p and logs it.
func (a *App) Begin(p *panel.Panel) (*panel.Call, error) {
	call, err := p.Begin()
	if err != nil {
		a.logger.Error("request not issued",
			"route", p.Route().RouteName,
			"error", err,
		)
		return nil, err
	}
	a.logger.Info("request issued",
		"route", p.Route().RouteName,
		"method", call.Method.String(),
		"url", call.URL,
		"seq", call.Seq,
	)
	return call, nil
}

// Execute performs the round trip for call with the configured transport.
// The result still has to be passed to Panel.Complete.
func (a *App) Execute(ctx context.Context, call *panel.Call) core.Outcome {
	return panel.Execute(ctx, a.requester, call)
}

// Send issues a call on p, waits for it and applies the result.
func (a *App) Send(ctx context.Context, p *panel.Panel) (core.Outcome, error) {
	call, err := a.Begin(p)
	if err != nil {
		return core.Outcome{}, err
	}
	outcome := a.Execute(ctx, call)
	p.Complete(call, outcome)
	return outcome, nil
}

// Close releases the history store.
func (a *App) Close() error {
	if a.history == nil {
		return nil
	}
	return a.history.Close()
}
