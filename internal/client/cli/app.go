package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/prodauth/internal/buildinfo"
	"github.com/dmitrijs2005/prodauth/internal/client/client"
	"github.com/dmitrijs2005/prodauth/internal/client/config"
	"github.com/dmitrijs2005/prodauth/internal/client/models"
	"github.com/dmitrijs2005/prodauth/internal/client/repositories/token"
	"github.com/dmitrijs2005/prodauth/internal/client/services"
	"github.com/dmitrijs2005/prodauth/internal/logging"
	"github.com/spf13/afero"
)

// App holds every service of one CLI process. Nothing is global: tests build
// as many independent Apps as they like.
type App struct {
	config *config.Config
	log    logging.Logger

	db     *sql.DB
	api    *client.HTTPClient
	tokens token.Store

	session      *services.SessionManager
	verifier     *services.Verifier
	customers    *services.Collection[models.Customer, models.CustomerInput]
	products     *services.Collection[models.Product, models.ProductInput]
	certificates *services.Collection[models.Certificate, models.CertificateInput]

	fs     afero.Fs
	reader *bufio.Reader
	out    io.Writer
}

// NewApp wires an App for the terminal: stdin/stdout, the OS filesystem and
// a logger configured from c.
func NewApp(c *config.Config) (*App, error) {
	log, err := logging.New(logging.Options{Level: c.LogLevel, JSON: c.LogJSON})
	if err != nil {
		return nil, err
	}
	return newApp(context.Background(), c, log, afero.NewOsFs(), os.Stdin, os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, log logging.Logger, fs afero.Fs, in io.Reader, out io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	tokens, db, err := openTokenStore(ctx, c, fs)
	if err != nil {
		return nil, err
	}

	api, err := client.NewHTTPClient(client.Options{
		BaseURL:   c.ServerURL,
		Timeout:   c.RequestTimeout,
		UserAgent: "prodauth-cli/" + buildinfo.Version(),
		Logger:    log.With("component", "http"),
	})
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, err
	}

	session := services.NewSessionManager(api, tokens, log)
	api.SetAuthenticator(session)

	return &App{
		config:   c,
		log:      log,
		db:       db,
		api:      api,
		tokens:   tokens,
		session:  session,
		verifier: services.NewVerifier(api, log),
		customers: services.NewCollection[models.Customer, models.CustomerInput](kindCustomers,
			client.NewResource[models.Customer, models.CustomerInput](api, kindCustomers), log),
		products: services.NewCollection[models.Product, models.ProductInput](kindProducts,
			client.NewResource[models.Product, models.ProductInput](api, kindProducts), log),
		certificates: services.NewCollection[models.Certificate, models.CertificateInput](kindCertificates,
			client.NewResource[models.Certificate, models.CertificateInput](api, kindCertificates), log),
		fs:     fs,
		reader: bufio.NewReader(in),
		out:    out,
	}, nil
}

// openTokenStore returns the configured store. The database is only opened
// for the sqlite store and is returned so the App can close it.
func openTokenStore(ctx context.Context, c *config.Config, fs afero.Fs) (token.Store, *sql.DB, error) {
	switch c.TokenStore {
	case config.TokenStoreSQLite:
		db, err := client.InitDatabase(ctx, c.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("error initializing database: %w", err)
		}
		return token.NewSQLiteStore(db), db, nil
	case config.TokenStoreFile:
		return token.NewFileStore(fs, c.TokenFile), nil, nil
	case config.TokenStoreMemory:
		return token.NewMemoryStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown token store %q", c.TokenStore)
	}
}

// Run restores the saved session, serves the REPL until the user exits and
// releases local resources.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) getStatus() string {
	u := a.session.User()
	if u == nil || !a.session.IsAuthenticated() {
		return "(anonymous)"
	}
	return fmt.Sprintf("(%s %s)", u.Username, u.Role)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// fail prints err for the user and returns it. Superseded requests are
// silent since a newer request already answered.
func (a *App) fail(err error) error {
	if err == nil || isSuperseded(err) {
		return err
	}
	a.println("Error:", client.DisplayMessage(err))
	return err
}
