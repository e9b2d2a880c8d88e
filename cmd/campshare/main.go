// Command campshare runs the camp scheduling tool: a reconciling local store
// of events, maintenance tasks, cleaning areas, and users, with invitation
// delivery and calendar export. Subcommands operate on the shared store; the
// run subcommand keeps a reconciliation daemon alive.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/example/campshare/internal/application"
	"github.com/example/campshare/internal/config"
	"github.com/example/campshare/internal/dispatch"
	"github.com/example/campshare/internal/export"
	"github.com/example/campshare/internal/logging"
	"github.com/example/campshare/internal/model"
	"github.com/example/campshare/internal/notify"
	"github.com/example/campshare/internal/state"
	"github.com/example/campshare/internal/storage"
)

const usage = `usage: campshare [-config path] <command> [arguments]

Commands:
  run              keep the store reconciled until interrupted
  export           write the calendar as iCalendar
  events           list calendar events
  recommendations  list retreat suggestions for next year
  tasks            list maintenance tasks
  cleaning         list cleaning areas
  login            log in by phone number and code
  logout           discard the session
  whoami           show the logged-in user
  invite           invite a new user (admin)
  reset-code       issue a fresh login code
`

func main() {
	configPath := flag.String("config", "campshare.yaml", "path to the configuration file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*configPath, args[0], args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath, command string, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.ContextWithLogger(ctx, logger)

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.close()

	switch command {
	case "run":
		return app.runDaemon(ctx)
	case "export":
		return app.exportCalendar(args)
	case "events":
		return app.listEvents()
	case "recommendations":
		return app.listRecommendations(ctx)
	case "tasks":
		return app.listTasks()
	case "cleaning":
		return app.listCleaning()
	case "login":
		return app.login(ctx, args)
	case "logout":
		return app.auth.Logout(ctx)
	case "whoami":
		return app.whoami(ctx)
	case "invite":
		return app.invite(ctx, args)
	case "reset-code":
		return app.resetCode(ctx, args)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

type app struct {
	cfg    config.Config
	logger *slog.Logger

	backend      storage.Store
	closeBackend func() error

	store *state.Store
	feed  *notify.Store

	calendar    *application.CalendarService
	maintenance *application.MaintenanceService
	cleaning    *application.CleaningService
	users       *application.UserService
	auth        *application.AuthService
}

func newApp(ctx context.Context, cfg config.Config, slogger *slog.Logger) (*app, error) {
	backend, closeBackend, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}

	store := state.NewStore(backend, cfg.PollSpec(), nil, nil, slogger)
	if err := store.Load(ctx); err != nil {
		_ = closeBackend()
		return nil, err
	}

	feed := notify.NewStore(backend, nil, nil, slogger)
	if err := feed.Load(ctx); err != nil {
		_ = closeBackend()
		return nil, err
	}

	emailSender := dispatch.NewEmailSender(cfg.SendGrid.APIKey, cfg.SendGrid.SenderEmail, cfg.SendGrid.SenderName, slogger)
	smsSender := dispatch.NewSMSSender(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.PhoneNumber, slogger)

	return &app{
		cfg:          cfg,
		logger:       slogger,
		backend:      backend,
		closeBackend: closeBackend,
		store:        store,
		feed:         feed,
		calendar:     application.NewCalendarService(store, feed, nil, nil, slogger),
		maintenance:  application.NewMaintenanceService(store, feed, slogger),
		cleaning:     application.NewCleaningService(store, slogger),
		users:        application.NewUserService(store, feed, emailSender, smsSender, nil, cfg.AppURL, slogger),
		auth:         application.NewAuthService(store, backend, smsSender, nil, slogger),
	}, nil
}

func (a *app) close() {
	if err := a.closeBackend(); err != nil {
		a.logger.Error("failed to close storage", "error", err)
	}
}

func (a *app) runDaemon(ctx context.Context) error {
	if err := a.store.Start(ctx); err != nil {
		return err
	}
	defer a.store.Stop()

	a.logger.Info("campshare running",
		"backend", a.cfg.Backend,
		"poll", a.cfg.PollSpec(),
		"events", len(a.store.Events()),
		"users", len(a.store.Users()),
	)

	<-ctx.Done()
	a.logger.Info("shutting down")
	return nil
}

func (a *app) exportCalendar(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("out", "campshare.ics", "output path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	if err := export.WriteICS(f, a.store.Events(), time.Now()); err != nil {
		return err
	}
	return f.Sync()
}

func (a *app) listEvents() error {
	for _, event := range a.calendar.Events() {
		fmt.Printf("%s  %s .. %s  [%s]  %s\n",
			event.ID,
			event.StartDate.Format("2006-01-02"),
			event.EndDate.Format("2006-01-02"),
			event.Category,
			event.Title,
		)
	}
	return nil
}

func (a *app) listRecommendations(ctx context.Context) error {
	suggestions := a.calendar.Recommendations(ctx)
	if len(suggestions) == 0 {
		fmt.Println("no retreat recommendations available")
		return nil
	}
	for _, s := range suggestions {
		marker := ""
		if s.RolledOver {
			marker = "  (rolled past month end)"
		}
		fmt.Printf("%s  %s .. %s  %s  (%s)%s\n",
			s.ID,
			s.StartDate.Format("2006-01-02"),
			s.EndDate.Format("2006-01-02"),
			s.Title,
			s.RelativeLabel,
			marker,
		)
	}
	return nil
}

func (a *app) listTasks() error {
	for _, task := range a.maintenance.Tasks() {
		fmt.Printf("%s  [%s/%s]  %s\n", task.ID, task.Priority, task.Status, task.Title)
	}
	return nil
}

func (a *app) listCleaning() error {
	for _, area := range a.cleaning.Areas() {
		last := "never"
		if area.LastCleaned != nil {
			last = area.LastCleaned.Format("2006-01-02 15:04")
		}
		fmt.Printf("%s  [%s]  %s  (last cleaned %s)\n", area.ID, area.Status, area.Area, last)
	}
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	phone := fs.String("phone", "", "phone number")
	code := fs.String("code", "", "login code")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := a.auth.Login(ctx, *phone, *code)
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s\n", user.Name)
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	user, ok, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("%s (%s)  permissions: %s\n", user.Name, user.PhoneNumber, joinPermissions(user.Permissions))
	return nil
}

func (a *app) invite(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("invite", flag.ContinueOnError)
	name := fs.String("name", "", "full name")
	phone := fs.String("phone", "", "phone number")
	email := fs.String("email", "", "email address (optional)")
	perms := fs.String("permissions", "read-only", "comma separated permissions")
	if err := fs.Parse(args); err != nil {
		return err
	}

	actor, err := a.requireLogin(ctx)
	if err != nil {
		return err
	}

	user, invitation, err := a.users.Invite(ctx, actor, application.InviteUserInput{
		Name:        *name,
		PhoneNumber: *phone,
		Email:       *email,
		Permissions: parsePermissions(*perms),
	})
	if err != nil {
		return err
	}
	if err := invitation.Dispatch(ctx); err != nil {
		// The user record is already saved; report the delivery failure
		// without undoing the invitation.
		fmt.Printf("invited %s, but delivery failed: %v\n", user.Name, err)
		return nil
	}
	fmt.Printf("invited %s\n", user.Name)
	return nil
}

func (a *app) resetCode(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset-code", flag.ContinueOnError)
	userID := fs.String("user", "", "user id (defaults to yourself)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	actor, err := a.requireLogin(ctx)
	if err != nil {
		return err
	}
	target := *userID
	if target == "" {
		target = actor.ID
	}

	user, invitation, err := a.users.ResetCode(ctx, actor, target)
	if err != nil {
		return err
	}
	if err := invitation.Dispatch(ctx); err != nil {
		fmt.Printf("reset code for %s, but delivery failed: %v\n", user.Name, err)
		return nil
	}
	fmt.Printf("reset code sent to %s\n", user.Name)
	return nil
}

func (a *app) requireLogin(ctx context.Context) (model.User, error) {
	user, ok, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return model.User{}, err
	}
	if !ok {
		return model.User{}, fmt.Errorf("not logged in; run campshare login first")
	}
	return user, nil
}

func openBackend(cfg config.Config) (storage.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case "file":
		store, err := storage.NewFileStore(cfg.StoragePath)
		if err != nil {
			return nil, nil, err
		}
		return store, noop, nil
	case "sqlite":
		store, err := storage.OpenSQLite(cfg.SQLiteDSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case "memory":
		return storage.NewMemoryStore(), noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func parsePermissions(value string) []model.Permission {
	parts := strings.Split(value, ",")
	perms := make([]model.Permission, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			perms = append(perms, model.Permission(trimmed))
		}
	}
	return perms
}

func joinPermissions(perms []model.Permission) string {
	parts := make([]string, 0, len(perms))
	for _, p := range perms {
		parts = append(parts, string(p))
	}
	return strings.Join(parts, ", ")
}
