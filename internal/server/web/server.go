// Package web serves the HTML front end of Tegenaria: login and
// registration, the about page, the apartment table and the members page.
package web

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/tegenaria/internal/logging"
	"github.com/dmitrijs2005/tegenaria/internal/server/models"
	"github.com/go-chi/chi/v5"
)

// UserService is the credential store as seen by the registration form.
type UserService interface {
	Create(ctx context.Context, username, email, password string, active bool) (*models.User, error)
	UsernameTaken(ctx context.Context, username string) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
}

// SessionService authenticates logins and maps session tokens to users.
type SessionService interface {
	Authenticate(ctx context.Context, login, password string) (*models.User, error)
	IssueToken(user *models.User) (string, error)
	Resolve(ctx context.Context, token string) (*models.User, error)
	Logout(ctx context.Context, user *models.User)
	TTL() time.Duration
}

// ApartmentService yields apartments in display order.
type ApartmentService interface {
	ListOrdered(ctx context.Context) ([]models.Apartment, error)
}

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Options carries the collaborators of the web server.
type Options struct {
	Address      string
	CookieSecure bool
	SecretKey    []byte
	Users        UserService
	Sessions     SessionService
	Apartments   ApartmentService
	Health       Pinger
	Metrics      *Metrics
	Logger       logging.Logger
}

// Server hosts the web UI.
type Server struct {
	address      string
	cookieSecure bool
	secretKey    []byte
	users        UserService
	sessions     SessionService
	apartments   ApartmentService
	health       Pinger
	metrics      *Metrics
	logger       logging.Logger
	validate     *formValidator
	pages        map[string]*template.Template
	router       chi.Router
}

// New constructs a configured server ready to serve HTTP traffic.
func New(opts Options) (*Server, error) {
	if opts.Users == nil || opts.Sessions == nil || opts.Apartments == nil {
		return nil, errors.New("web: users, sessions and apartments services are required")
	}
	if len(opts.SecretKey) == 0 {
		return nil, errors.New("web: secret key is required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop{}
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}

	pages, err := parsePages(templateFS)
	if err != nil {
		return nil, err
	}

	s := &Server{
		address:      opts.Address,
		cookieSecure: opts.CookieSecure,
		secretKey:    opts.SecretKey,
		users:        opts.Users,
		sessions:     opts.Sessions,
		apartments:   opts.Apartments,
		health:       opts.Health,
		metrics:      opts.Metrics,
		logger:       opts.Logger.With("module", "web_server"),
		validate:     newFormValidator(),
		pages:        pages,
	}
	s.router = s.routes()
	return s, nil
}

// ServeHTTP conforms to http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on the configured address until ctx is cancelled, then shuts
// the server down gracefully.
func (s *Server) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func parsePages(root fs.FS) (map[string]*template.Template, error) {
	layout, err := template.New("").ParseFS(root, "templates/layout.html")
	if err != nil {
		return nil, err
	}

	pages := map[string]*template.Template{}
	for _, name := range []string{"home", "register", "about", "apartments", "members", "error"} {
		t, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(root, "templates/"+name+".html"); err != nil {
			return nil, err
		}
		pages[name] = t
	}
	return pages, nil
}
