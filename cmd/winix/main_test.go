package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jrsteele09/winix/devices"
	"github.com/jrsteele09/winix/internal/config"
	apperrors "github.com/jrsteele09/winix/internal/errors"
	"github.com/jrsteele09/winix/sessions"
	"github.com/jrsteele09/winix/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	t.Setenv("WINIX_CONFIG", filepath.Join(t.TempDir(), "config.json"))
	return config.New()
}

func TestNoArgsPrintsHelp(t *testing.T) {
	var out bytes.Buffer
	_, err := parseArgsTo(nil, testConfig(t), &out)
	require.ErrorIs(t, err, errHelpShown)
	require.Contains(t, out.String(), "fan <low|medium|high|turbo>")
	require.Contains(t, out.String(), "login [--username U] [--password P] [--refresh]")
}

func TestUnknownCommand(t *testing.T) {
	var out bytes.Buffer
	_, err := parseArgsTo([]string{"status"}, testConfig(t), &out)
	require.Error(t, err)
	require.NotErrorIs(t, err, errHelpShown)
	require.Contains(t, out.String(), "Usage:")
}

func TestParseLogin(t *testing.T) {
	cfg := testConfig(t)
	inv, err := parseArgsTo([]string{"login", "--username", "me@example.com", "--password", "pw", "--refresh"}, cfg, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, cmdLogin, inv.command)
	require.Equal(t, "me@example.com", inv.username)
	require.Equal(t, "pw", inv.password)
	require.True(t, inv.refresh)
	require.Equal(t, cfg.GetConfigPath(), inv.configPath)
}

func TestParseConfigOverride(t *testing.T) {
	inv, err := parseArgsTo([]string{"devices", "--config", "/tmp/other.json", "-v"}, testConfig(t), &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, "/tmp/other.json", inv.configPath)
	require.True(t, inv.verbose)
}

func TestParseFan(t *testing.T) {
	inv, err := parseArgsTo([]string{"fan", "turbo"}, testConfig(t), &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, devices.FanTurbo, inv.fanLevel)

	for _, args := range [][]string{{"fan"}, {"fan", "sleep"}, {"fan", "low", "high"}} {
		_, err := parseArgsTo(args, testConfig(t), &bytes.Buffer{})
		require.Error(t, err, strings.Join(args, " "))
	}
}

func TestParsePower(t *testing.T) {
	inv, err := parseArgsTo([]string{"power", "off"}, testConfig(t), &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, devices.PowerOff, inv.powerState)

	_, err = parseArgsTo([]string{"power", "standby"}, testConfig(t), &bytes.Buffer{})
	require.Error(t, err)
}

func TestParseRejectsUnknownFlagsAndArgs(t *testing.T) {
	_, err := parseArgsTo([]string{"devices", "--username", "x"}, testConfig(t), &bytes.Buffer{})
	require.Error(t, err)

	_, err = parseArgsTo([]string{"refresh", "now"}, testConfig(t), &bytes.Buffer{})
	require.Error(t, err)
}

func TestSubcommandHelp(t *testing.T) {
	var out bytes.Buffer
	_, err := parseArgsTo([]string{"login", "--help"}, testConfig(t), &out)
	require.ErrorIs(t, err, errHelpShown)
	require.Contains(t, out.String(), "--refresh")
}

func TestPromptCredentials(t *testing.T) {
	var prompts bytes.Buffer
	username, password, err := promptCredentials(strings.NewReader("me@example.com\nsecret\n"), &prompts, "", "")
	require.NoError(t, err)
	require.Equal(t, "me@example.com", username)
	require.Equal(t, "secret", password)
	require.Contains(t, prompts.String(), "Username (email): ")
	require.Contains(t, prompts.String(), "Password: ")
}

func TestPromptCredentialsOnlyAsksForMissing(t *testing.T) {
	var prompts bytes.Buffer
	username, password, err := promptCredentials(strings.NewReader("secret"), &prompts, "me@example.com", "")
	require.NoError(t, err)
	require.Equal(t, "me@example.com", username)
	require.Equal(t, "secret", password)
	require.NotContains(t, prompts.String(), "Username")
}

func TestPromptCredentialsEmptyInput(t *testing.T) {
	_, _, err := promptCredentials(strings.NewReader(""), &bytes.Buffer{}, "", "")
	require.Error(t, err)
}

func TestHintFor(t *testing.T) {
	require.Contains(t, hintFor(fmt.Errorf("wrapped: %w", apperrors.ErrNoSession)), "winix login")
	require.Contains(t, hintFor(apperrors.ErrNoDevice), "winix refresh")
	require.Contains(t, hintFor(apperrors.ErrConfigUnreadable), "delete or fix")
	require.Empty(t, hintFor(apperrors.ErrControl))
}

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	setupLogging(&bytes.Buffer{}, "error", false)
	require.Equal(t, zerolog.ErrorLevel, zerolog.GlobalLevel())

	setupLogging(&bytes.Buffer{}, "nonsense", false)
	require.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	setupLogging(&bytes.Buffer{}, "error", true)
	require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestExecuteDevicesAgainstFileStore(t *testing.T) {
	cfg := testConfig(t)
	path := cfg.GetConfigPath()
	require.NoError(t, store.Save(path, &store.State{
		Session: &sessions.Session{UserID: "u", AccessToken: "a", RefreshToken: "r"},
		Devices: []devices.Record{{ID: "dev-1", Alias: "Bedroom"}},
	}))

	var out bytes.Buffer
	d, err := newDispatcher(cfg, path, &out)
	require.NoError(t, err)

	inv, err := parseArgsTo([]string{"devices"}, cfg, &bytes.Buffer{})
	require.NoError(t, err)
	require.NoError(t, execute(context.Background(), d, inv, strings.NewReader(""), &bytes.Buffer{}))
	require.Contains(t, out.String(), "1 devices:")
	require.Contains(t, out.String(), "Device#0 (default)")
}

func TestExecuteRefreshWithoutSession(t *testing.T) {
	cfg := testConfig(t)
	d, err := newDispatcher(cfg, cfg.GetConfigPath(), &bytes.Buffer{})
	require.NoError(t, err)

	inv, err := parseArgsTo([]string{"login", "--refresh"}, cfg, &bytes.Buffer{})
	require.NoError(t, err)
	require.ErrorIs(t, execute(context.Background(), d, inv, strings.NewReader(""), &bytes.Buffer{}), apperrors.ErrNoSession)
}

func TestExecuteFanWithoutDevices(t *testing.T) {
	cfg := testConfig(t)
	d, err := newDispatcher(cfg, cfg.GetConfigPath(), &bytes.Buffer{})
	require.NoError(t, err)

	inv, err := parseArgsTo([]string{"fan", "high"}, cfg, &bytes.Buffer{})
	require.NoError(t, err)
	require.ErrorIs(t, execute(context.Background(), d, inv, strings.NewReader(""), &bytes.Buffer{}), apperrors.ErrNoDevice)
}
