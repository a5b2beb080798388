// cmd/serve.go
//
// `funquiz serve`: load the question bank, open and migrate SQLite, start the
// HTTP backend.

package cmd

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/robalobadob/funquiz/internal/bank"
	"github.com/robalobadob/funquiz/internal/database"
	"github.com/robalobadob/funquiz/internal/httpserver"
	"github.com/robalobadob/funquiz/internal/store"
)

type serveConfig struct {
	bind           string
	port           int
	driver         string
	dsn            string
	questionsFile  string
	jwtSecret      string
	jwtTTL         time.Duration
	cookieName     string
	clientOrigin   string
	production     bool
	uploadDir      string
	publicURL      string
	requestTimeout time.Duration
	sessionTTL     time.Duration
	dailySalt      string
}

func (c *serveConfig) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.driver != database.DriverCGO && c.driver != database.DriverPure {
		return fmt.Errorf("invalid --db-driver %q (want %s or %s)", c.driver, database.DriverCGO, database.DriverPure)
	}
	if c.dsn == "" {
		return errors.New("--db must not be empty")
	}
	if c.production && (c.jwtSecret == "" || c.jwtSecret == "dev_secret_change_me") {
		return errors.New("--jwt-secret is required in production")
	}
	return nil
}

func (c *serveConfig) addr() string {
	return net.JoinHostPort(c.bind, strconv.Itoa(c.port))
}

func (c *serveConfig) httpConfig() httpserver.Config {
	return httpserver.Config{
		ClientOrigin:   c.clientOrigin,
		JWTSecret:      c.jwtSecret,
		JWTTTL:         c.jwtTTL,
		CookieName:     c.cookieName,
		Production:     c.production,
		UploadDir:      c.uploadDir,
		PublicURL:      c.publicURL,
		RequestTimeout: c.requestTimeout,
		SessionTTL:     c.sessionTTL,
		DailySalt:      c.dailySalt,
	}
}

func newServeCmd(v *viper.Viper) *cobra.Command {
	cfg := &serveConfig{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return runServe(cmd, cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: FUNQUIZ_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 5175, "port to listen on (env: FUNQUIZ_PORT)")
	fs.StringVar(&cfg.driver, "db-driver", database.DriverCGO, "sqlite driver: sqlite3 (cgo) or sqlite (pure Go) (env: FUNQUIZ_DB_DRIVER)")
	fs.StringVar(&cfg.dsn, "db", "./data/funquiz.db", "SQLite database path (env: FUNQUIZ_DB)")
	fs.StringVar(&cfg.questionsFile, "questions-file", "", "YAML question bank; empty uses the built-in bank (env: FUNQUIZ_QUESTIONS_FILE)")
	fs.StringVar(&cfg.jwtSecret, "jwt-secret", "", "HS256 signing secret (env: FUNQUIZ_JWT_SECRET)")
	fs.DurationVar(&cfg.jwtTTL, "jwt-ttl", 14*24*time.Hour, "token lifetime (env: FUNQUIZ_JWT_TTL)")
	fs.StringVar(&cfg.cookieName, "cookie-name", "funquiz_token", "auth cookie name (env: FUNQUIZ_COOKIE_NAME)")
	fs.StringVar(&cfg.clientOrigin, "client-origin", "http://localhost:5173", "allowed CORS origin (env: FUNQUIZ_CLIENT_ORIGIN)")
	fs.BoolVar(&cfg.production, "production", false, "secure cookies and strict config checks (env: FUNQUIZ_PRODUCTION)")
	fs.StringVar(&cfg.uploadDir, "upload-dir", "./uploads", "directory for profile pictures (env: FUNQUIZ_UPLOAD_DIR)")
	fs.StringVar(&cfg.publicURL, "public-url", "", "URL encoded in /share.png; derived from the request when empty (env: FUNQUIZ_PUBLIC_URL)")
	fs.DurationVar(&cfg.requestTimeout, "request-timeout", 10*time.Second, "per-request handler timeout (env: FUNQUIZ_REQUEST_TIMEOUT)")
	fs.DurationVar(&cfg.sessionTTL, "session-ttl", 2*time.Hour, "idle time before a play session is dropped (env: FUNQUIZ_SESSION_TTL)")
	fs.StringVar(&cfg.dailySalt, "daily-salt", "", "key for the daily question order; defaults to the JWT secret (env: FUNQUIZ_DAILY_SALT)")
	bindFlags(v, fs)

	return cmd
}

func runServe(cmd *cobra.Command, cfg *serveConfig) error {
	ctx := cmd.Context()

	b, err := bank.LoadFile(cfg.questionsFile)
	if err != nil {
		return fmt.Errorf("load question bank: %w", err)
	}
	counts := b.Counts()
	log.Info().Interface("questions", counts).Msg("question bank loaded")

	db, err := database.Open(cfg.driver, cfg.dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if !cfg.production && cfg.jwtSecret == "" {
		log.Warn().Msg("no --jwt-secret set; using the development secret")
	}

	srv := httpserver.New(cfg.httpConfig(), db, store.NewMemoryStore(), b)
	log.Info().Str("addr", cfg.addr()).Str("driver", cfg.driver).Str("db", cfg.dsn).Msg("starting funquiz server")
	return srv.Start(ctx, cfg.addr())
}
