package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/jrsteele09/winix/cognito"
	"github.com/jrsteele09/winix/dispatch"
	"github.com/jrsteele09/winix/internal/config"
	apperrors "github.com/jrsteele09/winix/internal/errors"
	"github.com/jrsteele09/winix/store"
	"github.com/jrsteele09/winix/winixapi"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if hint := hintFor(err); hint != "" {
			fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	cfg := config.New()
	inv, err := parseArgs(args, cfg)
	if err != nil {
		if errors.Is(err, errHelpShown) {
			return nil
		}
		return err
	}

	setupLogging(os.Stderr, cfg.GetLogLevel(), inv.verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := newDispatcher(cfg, inv.configPath, os.Stdout)
	if err != nil {
		return err
	}
	return execute(ctx, d, inv, os.Stdin, os.Stderr)
}

func newDispatcher(cfg config.Config, configPath string, out io.Writer) (*dispatch.Dispatcher, error) {
	httpClient := &http.Client{Timeout: cfg.GetHTTPTimeout()}

	auth, err := cognito.New(cfg, cognito.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}

	log.Debug().Str("path", configPath).Msg("using config")
	return dispatch.New(dispatch.Config{
		Store:     store.NewFileRepo(configPath),
		Auth:      auth,
		Directory: winixapi.NewAccountClient(cfg.GetMobileAPIURL(), cfg.GetCognitoClientSecret(), httpClient),
		Control:   winixapi.NewControlClient(cfg.GetControlAPIURL(), httpClient),
		Out:       out,
	})
}

func execute(ctx context.Context, d *dispatch.Dispatcher, inv *invocation, stdin io.Reader, prompts io.Writer) error {
	switch inv.command {
	case cmdLogin:
		if inv.refresh {
			return d.Refresh(ctx)
		}
		username, password, err := promptCredentials(stdin, prompts, inv.username, inv.password)
		if err != nil {
			return err
		}
		return d.Login(ctx, username, password)
	case cmdDevices:
		return d.Devices()
	case cmdRefresh:
		return d.RefreshDevices(ctx)
	case cmdFan:
		return d.Fan(ctx, inv.fanLevel)
	case cmdPower:
		return d.Power(ctx, inv.powerState)
	}
	return fmt.Errorf("unknown command %q", inv.command)
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrConfigUnreadable):
		return "delete or fix the config file, then run 'winix login'"
	case errors.Is(err, apperrors.ErrNoSession):
		return "run 'winix login' first"
	case errors.Is(err, apperrors.ErrNoDevice):
		return "run 'winix login' or 'winix refresh' to fetch your devices"
	case errors.Is(err, apperrors.ErrAuthenticationFailed):
		return "check your credentials, or run 'winix login --refresh' if your session has expired"
	}
	return ""
}
