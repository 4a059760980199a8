// Command clubctl runs reconciliation, token refresh and export jobs once,
// for cron or manual use, and mints staff access tokens.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/SscSPs/club_management_app/internal/core/domain"
	portssvc "github.com/SscSPs/club_management_app/internal/core/ports/services"
	"github.com/SscSPs/club_management_app/internal/platform/app"
	"github.com/SscSPs/club_management_app/internal/platform/config"
	"github.com/SscSPs/club_management_app/internal/utils"
)

const usage = `usage: clubctl <command> [flags]

commands:
  sync-calendar [sourceID | --all]   reconcile calendar feeds
  sync-catalog  [productID | --all]  reconcile print-on-demand products
  refresh-token [account | --all]    refresh social feed tokens
  export-dues                        write the dues roster to the spreadsheet
  issue-token --user ID --role ROLE  print a staff access token
`

var errUsage = errors.New("invalid usage")

// servicesFactory builds the service container on demand; commands that need
// no database never call it.
type servicesFactory func(ctx context.Context) (*portssvc.ServiceContainer, func(), error)

func main() {
	// Logs go to stderr so stdout stays machine readable.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	factory := func(ctx context.Context) (*portssvc.ServiceContainer, func(), error) {
		a, err := app.New(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return a.Services, a.Close, nil
	}

	os.Exit(run(ctx, os.Args[1:], os.Stdout, cfg, factory))
}

func run(ctx context.Context, args []string, out io.Writer, cfg *config.Config, newServices servicesFactory) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	cmd, rest := args[0], args[1:]

	var (
		result any
		err    error
	)
	switch cmd {
	case "issue-token":
		result, err = issueToken(rest, cfg)
	case "sync-calendar", "sync-catalog", "refresh-token", "export-dues":
		var svc *portssvc.ServiceContainer
		var closeFn func()
		svc, closeFn, err = newServices(ctx)
		if err != nil {
			slog.Error("Failed to initialize", slog.String("error", err.Error()))
			return 1
		}
		defer closeFn()
		result, err = dispatch(ctx, cmd, rest, svc)
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}

	if errors.Is(err, errUsage) {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	if result != nil {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			slog.Error("Failed to write result", slog.String("error", encErr.Error()))
			return 1
		}
	}
	if err != nil {
		slog.Error("Command failed", slog.String("command", cmd), slog.String("error", err.Error()))
		return 1
	}
	return 0
}

// targetArgs parses "[id | --all]".
func targetArgs(cmd string, args []string) (id string, all bool, err error) {
	fs := pflag.NewFlagSet(cmd, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&all, "all", false, "run for every target")
	if err := fs.Parse(args); err != nil {
		return "", false, fmt.Errorf("%w: %v", errUsage, err)
	}
	switch {
	case all && fs.NArg() == 0:
		return "", true, nil
	case !all && fs.NArg() == 1:
		return fs.Arg(0), false, nil
	}
	return "", false, fmt.Errorf("%w: %s needs exactly one id or --all", errUsage, cmd)
}

func dispatch(ctx context.Context, cmd string, args []string, svc *portssvc.ServiceContainer) (any, error) {
	if cmd == "export-dues" {
		return orNil(svc.Export.ExportDuesRoster(ctx))
	}
	id, all, err := targetArgs(cmd, args)
	if err != nil {
		return nil, err
	}
	switch cmd {
	case "sync-calendar":
		if all {
			return svc.Calendar.SyncAllCalendarSources(ctx)
		}
		return orNil(svc.Calendar.SyncCalendarSource(ctx, id))
	case "sync-catalog":
		if all {
			return svc.Catalog.SyncAllProducts(ctx)
		}
		return orNil(svc.Catalog.SyncProduct(ctx, id))
	default:
		if all {
			// Per-account failures are in the results.
			return svc.Social.RefreshAll(ctx)
		}
		return orNil(svc.Social.RefreshToken(ctx, id))
	}
}

// orNil keeps a nil result pointer from printing as "null".
func orNil[T any](v *T, err error) (any, error) {
	if v == nil {
		return nil, err
	}
	return v, err
}

type issuedToken struct {
	Token     string      `json:"token"`
	UserID    string      `json:"userID"`
	Role      domain.Role `json:"role"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

func issueToken(args []string, cfg *config.Config) (any, error) {
	fs := pflag.NewFlagSet("issue-token", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	userID := fs.String("user", "", "subject user id")
	roleFlag := fs.String("role", string(domain.RoleMember), "ADMIN, TREASURER, COACH or MEMBER")
	ttl := fs.Duration("ttl", cfg.JWTExpiryDuration, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	if *userID == "" {
		return nil, fmt.Errorf("%w: --user is required", errUsage)
	}
	role, err := domain.ParseRole(*roleFlag)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	token, err := utils.GenerateJWT(*userID, role, cfg.JWTSecret, *ttl, cfg.JWTIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return issuedToken{Token: token, UserID: *userID, Role: role, ExpiresAt: time.Now().Add(*ttl).UTC()}, nil
}
