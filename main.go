package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"activity-insights/internal/analysis"
	"activity-insights/internal/auth"
	"activity-insights/internal/config"
	"activity-insights/internal/events"
	"activity-insights/internal/service"
	"activity-insights/internal/store"
)

const usage = `usage: activity-insights <command> [flags]

commands:
  serve                          run the HTTP API (and the scheduled Strava sync when enabled)
  import  -user U <folder>       import cardioActivities.csv and its GPX files
  sync    [-user U]              pull new Strava activities (all connected users by default)
  export  -user U -o FILE.xlsx   write the aggregation report to an Excel workbook
  tui     -user U                open the terminal dashboard
  user    add -email E | list    manage users
  connect -user U                authorize Strava access for a user

U is a user ID or email address.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		log.Fatal(err)
	}
}

func run(cmd string, args []string) error {
	ctx := context.Background()

	// Load configuration, falling back to defaults on first run
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		path, _ := config.Path()
		fmt.Fprintf(os.Stderr, "No config file found. An example was written to %s\n", path)
		d := config.DefaultConfig()
		cfg = &d
	} else if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		path, _ := config.Path()
		return fmt.Errorf("config validation failed: %w (edit %s)", err, path)
	}

	// The dashboard owns the terminal, so its logs go to a file
	logOut := io.Writer(os.Stderr)
	if cmd == "tui" {
		f, err := openLogFile()
		if err != nil {
			return err
		}
		defer f.Close()
		logOut = f
	}
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	db, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	a, err := newApp(cfg, db, logger)
	if err != nil {
		return err
	}
	defer a.close()

	switch cmd {
	case "serve":
		return a.serve(ctx, args)
	case "import":
		return a.importFolder(ctx, args)
	case "sync":
		return a.sync(ctx, args)
	case "export":
		return a.export(args)
	case "tui":
		return a.tui(args)
	case "user":
		return a.user(args)
	case "connect":
		return a.connect(ctx, args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n\n%s", cmd, usage)
	}
}

// app wires the services every command shares
type app struct {
	cfg       *config.Config
	db        *store.DB
	clock     analysis.Clock
	log       *slog.Logger
	publisher *events.Publisher
	query     *service.QueryService
	imports   *service.ImportService
	syncer    *service.SyncService // nil without Strava credentials
	oauth     *oauth2.Config
}

func newApp(cfg *config.Config, db *store.DB, logger *slog.Logger) (*app, error) {
	clock := analysis.Clock(analysis.SystemClock)
	engine := analysis.NewEngine(cfg.ScoringConfig(), clock)
	query := service.NewQueryService(db, engine)

	publisher, err := events.NewPublisher(events.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating score publisher: %w", err)
	}
	notifier := service.NewNotifier(query, publisher, clock, logger)

	a := &app{
		cfg:       cfg,
		db:        db,
		clock:     clock,
		log:       logger,
		publisher: publisher,
		query:     query,
		imports:   service.NewImportService(db, notifier, logger),
	}

	if cfg.ValidateStrava() == nil {
		a.oauth = auth.NewOAuthConfig(auth.Config{
			ClientID:     cfg.Strava.ClientID,
			ClientSecret: cfg.Strava.ClientSecret,
			RedirectURL:  fmt.Sprintf("http://localhost:%d/callback", cfg.Strava.CallbackPort),
		})
		a.syncer = service.NewSyncService(db, service.StravaClients(a.oauth, db), notifier, logger)
	}
	return a, nil
}

func (a *app) close() {
	if err := a.publisher.Close(); err != nil {
		a.log.Warn("score_publisher_close_failed", slog.Any("err", err))
	}
}

// resolveUser accepts a user ID or an email address
func (a *app) resolveUser(ref string) (*store.User, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, errors.New("-user is required")
	}
	if id, err := uuid.Parse(ref); err == nil {
		return a.db.GetUser(id)
	}
	return a.db.GetUserByEmail(ref)
}

func openLogFile() (*os.File, error) {
	dir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "tui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}
