package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"activity-insights/internal/api"
	"activity-insights/internal/auth"
	"activity-insights/internal/observability"
	"activity-insights/internal/report"
	"activity-insights/internal/service"
	"activity-insights/internal/store"
	"activity-insights/internal/tui"
)

var errStravaNotConfigured = errors.New("strava.client_id and strava.client_secret must be set in the config file")

func (a *app) serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", a.cfg.Server.Addr, "listen address")
	fs.Parse(args)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.Sync.Enabled {
		if a.syncer == nil {
			return errStravaNotConfigured
		}
		scheduler := service.NewScheduler(a.syncer, a.log)
		if err := scheduler.Start(a.cfg.Sync.Schedule); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	srv := api.NewServer(a.db, a.query, a.imports, api.Options{
		RateLimitBurst:    a.cfg.Server.RateLimitBurst,
		RateLimitInterval: time.Duration(a.cfg.Server.RateLimitSeconds) * time.Second,
		AllowedOrigins:    a.cfg.Server.AllowedOrigins,
		MaxUploadBytes:    int64(a.cfg.Server.MaxUploadMB) << 20,
		AccessLog:         os.Stdout,
		Metrics:           observability.NewMetrics(),
		TrustProxyHeaders: a.cfg.Server.TrustProxyHeaders,
		Clock:             a.clock,
	}, a.log)

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http_listening", slog.String("addr", *addr))
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.log.Info("http_shutdown")
	return httpServer.Shutdown(shutdownCtx)
}

func (a *app) importFolder(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	userRef := fs.String("user", "", "user ID or email")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("import needs exactly one folder argument")
	}
	user, err := a.resolveUser(*userRef)
	if err != nil {
		return err
	}

	result, err := a.imports.ImportFolder(ctx, user.ID, fs.Arg(0))
	if err != nil {
		return fmt.Errorf("importing %s: %w", fs.Arg(0), err)
	}

	fmt.Printf("Parsed %d activities: %d new, %d already stored, %s track points\n",
		result.Parsed, result.Inserted, result.Skipped, humanize.Comma(int64(result.TrackPoints)))
	for _, e := range result.Errors {
		fmt.Printf("  skipped: %s\n", e)
	}
	return nil
}

func (a *app) sync(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	userRef := fs.String("user", "", "user ID or email (default: every connected user)")
	fs.Parse(args)

	if a.syncer == nil {
		return errStravaNotConfigured
	}

	if *userRef == "" {
		results, err := a.syncer.SyncAll(ctx)
		for _, r := range results {
			printSyncResult(r)
		}
		return err
	}

	user, err := a.resolveUser(*userRef)
	if err != nil {
		return err
	}

	progress := make(chan service.SyncProgress, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for p := range progress {
			if p.Total > 0 {
				fmt.Printf("\r%s: %d/%d   ", p.Phase, p.Completed, p.Total)
			}
		}
		fmt.Println()
	}()

	result, err := a.syncer.SyncUser(ctx, user.ID, progress)
	<-done
	if err != nil {
		return err
	}
	printSyncResult(result)
	return nil
}

func printSyncResult(r *service.SyncResult) {
	fmt.Printf("%s: fetched %d, stored %d, skipped %d, tracks %d (%s points)\n",
		r.UserID, r.ActivitiesFetched, r.ActivitiesStored, r.ActivitiesSkipped,
		r.StreamsFetched, humanize.Comma(int64(r.TrackPoints)))
	for _, e := range r.Errors {
		fmt.Printf("  error: %v\n", e)
	}
}

func (a *app) export(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	userRef := fs.String("user", "", "user ID or email")
	out := fs.String("o", "activity-report.xlsx", "output file")
	fromStr := fs.String("from", "", "first day (YYYY-MM-DD)")
	toStr := fs.String("to", "", "last day (YYYY-MM-DD)")
	fs.Parse(args)

	user, err := a.resolveUser(*userRef)
	if err != nil {
		return err
	}
	from, err := parseDay(*fromStr)
	if err != nil {
		return fmt.Errorf("-from: %w", err)
	}
	to, err := parseDay(*toStr)
	if err != nil {
		return fmt.Errorf("-to: %w", err)
	}

	rep, err := a.query.ActivitiesReport(user.ID, from, to)
	if err != nil {
		return err
	}

	err = report.Export(*out, report.Data{
		UserEmail:    user.Email,
		Aggregations: rep.Aggregation,
		Monthly:      rep.TimeAggregations,
		Generated:    a.clock(),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %d activities to %s\n", len(rep.Activities), *out)
	return nil
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(api.QueryDateLayout, s)
}

func (a *app) tui(args []string) error {
	fs := flag.NewFlagSet("tui", flag.ExitOnError)
	userRef := fs.String("user", "", "user ID or email")
	fs.Parse(args)

	user, err := a.resolveUser(*userRef)
	if err != nil {
		return err
	}

	// Only offer sync when this user has connected Strava
	syncer := a.syncer
	if syncer != nil {
		if _, err := a.db.GetStravaAuth(user.ID); errors.Is(err, store.ErrNoAuth) {
			syncer = nil
		}
	}

	model := tui.NewApp(a.query, syncer, user.ID, tui.NewUnits(a.cfg.Display))
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

func (a *app) user(args []string) error {
	if len(args) == 0 {
		return errors.New("user needs a subcommand: add or list")
	}

	switch args[0] {
	case "add":
		fs := flag.NewFlagSet("user add", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		googleID := fs.String("google-id", "", "Google account ID")
		fs.Parse(args[1:])

		if *email == "" {
			return errors.New("-email is required")
		}
		u, err := a.db.CreateUser(*googleID, *email)
		if err != nil {
			return err
		}
		fmt.Printf("Created user %s (%s)\n", u.ID, u.Email)
		return nil

	case "list":
		users, err := a.db.ListUsers()
		if err != nil {
			return err
		}
		for _, u := range users {
			n, err := a.db.CountActivities(u.ID)
			if err != nil {
				return err
			}
			fmt.Printf("%s  %-30s  %5d activities  joined %s\n", u.ID, u.Email, n, humanize.Time(u.CreatedAt))
		}
		return nil

	default:
		return fmt.Errorf("unknown user subcommand %q", args[0])
	}
}

func (a *app) connect(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("connect", flag.ExitOnError)
	userRef := fs.String("user", "", "user ID or email")
	fs.Parse(args)

	if a.oauth == nil {
		return errStravaNotConfigured
	}
	user, err := a.resolveUser(*userRef)
	if err != nil {
		return err
	}

	result, err := auth.Authenticate(ctx, a.oauth, a.cfg.Strava.CallbackPort, os.Stdout)
	if err != nil {
		return fmt.Errorf("authentication: %w", err)
	}
	if err := a.db.SaveStravaAuth(result.ToStravaAuth(user.ID)); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}

	fmt.Printf("\nConnected Strava athlete %d to %s\n", result.AthleteID, user.Email)
	return nil
}
