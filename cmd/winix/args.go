package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/winix/devices"
	"github.com/jrsteele09/winix/internal/config"
	"github.com/spf13/pflag"
)

const (
	cmdLogin   = "login"
	cmdDevices = "devices"
	cmdFan     = "fan"
	cmdPower   = "power"
	cmdRefresh = "refresh"
)

// errHelpShown means usage was printed on request and the process should exit cleanly.
var errHelpShown = errors.New("help shown")

// invocation is one parsed command line.
type invocation struct {
	command    string
	configPath string
	verbose    bool

	username string
	password string
	refresh  bool

	fanLevel   devices.FanLevel
	powerState devices.PowerState
}

var commandSummaries = []struct{ name, usage, summary string }{
	{cmdLogin, "login [--username U] [--password P] [--refresh]", "Authenticate Winix account"},
	{cmdDevices, "devices", "List registered Winix devices"},
	{cmdFan, "fan <low|medium|high|turbo>", "Fan speed controls"},
	{cmdPower, "power <on|off>", "Power controls"},
	{cmdRefresh, "refresh", "Refresh account device metadata"},
}

func parseArgs(args []string, cfg config.EnvConfig) (*invocation, error) {
	return parseArgsTo(args, cfg, os.Stdout)
}

func parseArgsTo(args []string, cfg config.EnvConfig, usageOut io.Writer) (*invocation, error) {
	if len(args) == 0 {
		printUsage(usageOut, cfg.GetAppName())
		return nil, errHelpShown
	}

	inv := &invocation{command: args[0]}
	switch inv.command {
	case "help", "-h", "--help":
		printUsage(usageOut, cfg.GetAppName())
		return nil, errHelpShown
	case cmdLogin, cmdDevices, cmdFan, cmdPower, cmdRefresh:
	default:
		printUsage(usageOut, cfg.GetAppName())
		return nil, fmt.Errorf("unknown command %q", inv.command)
	}

	flags := pflag.NewFlagSet(inv.command, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.StringVar(&inv.configPath, "config", cfg.GetConfigPath(), "path to the config file")
	flags.BoolVarP(&inv.verbose, "verbose", "v", false, "log debug output to stderr")
	if inv.command == cmdLogin {
		flags.StringVar(&inv.username, "username", "", "username (email)")
		flags.StringVar(&inv.password, "password", "", "password")
		flags.BoolVar(&inv.refresh, "refresh", false, "refresh the Winix Cognito token instead of logging in")
	}

	if err := flags.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printCommandUsage(usageOut, inv.command, flags)
			return nil, errHelpShown
		}
		return nil, fmt.Errorf("%s: %w", inv.command, err)
	}
	inv.configPath = config.ExpandHome(inv.configPath)

	positional := flags.Args()
	switch inv.command {
	case cmdFan:
		if len(positional) != 1 {
			return nil, fmt.Errorf("fan: expected exactly one level (low, medium, high, turbo)")
		}
		level, err := devices.ParseFanLevel(positional[0])
		if err != nil {
			return nil, err
		}
		inv.fanLevel = level
	case cmdPower:
		if len(positional) != 1 {
			return nil, fmt.Errorf("power: expected exactly one state (on, off)")
		}
		state, err := devices.ParsePowerState(positional[0])
		if err != nil {
			return nil, err
		}
		inv.powerState = state
	default:
		if len(positional) > 0 {
			return nil, fmt.Errorf("%s: unexpected argument %q", inv.command, positional[0])
		}
	}

	return inv, nil
}

func printUsage(w io.Writer, appName string) {
	fmt.Fprintln(w, figure.NewFigure(appName, "cybermedium", false).String())
	fmt.Fprintf(w, "Winix C545 Air Purifier Control\n\nUsage:\n")
	for _, c := range commandSummaries {
		fmt.Fprintf(w, "  winix %-50s %s\n", c.usage, c.summary)
	}
	fmt.Fprintf(w, "\nEvery command accepts --config PATH and --verbose.\n")
}

func printCommandUsage(w io.Writer, command string, flags *pflag.FlagSet) {
	for _, c := range commandSummaries {
		if c.name == command {
			fmt.Fprintf(w, "Usage: winix %s\n\n%s\n\nFlags:\n", c.usage, c.summary)
		}
	}
	fmt.Fprint(w, flags.FlagUsages())
}
