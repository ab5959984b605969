package dispatch_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jrsteele09/winix/cognito/cognitofake"
	"github.com/jrsteele09/winix/devices"
	"github.com/jrsteele09/winix/dispatch"
	apperrors "github.com/jrsteele09/winix/internal/errors"
	"github.com/jrsteele09/winix/sessions"
	"github.com/jrsteele09/winix/store"
	"github.com/jrsteele09/winix/store/repofake"
	"github.com/jrsteele09/winix/winixapi/winixfake"
	"github.com/stretchr/testify/require"
)

var (
	existingSession = &sessions.Session{
		UserID:       "user-1",
		AccessToken:  "access-old",
		RefreshToken: "refresh-old",
	}
	loginSession = &sessions.Session{
		UserID:       "user-1",
		AccessToken:  "access-new",
		RefreshToken: "refresh-new",
		IDToken:      "id-new",
	}
	threeDevices = []devices.Record{
		{ID: "dev-1", Mac: "aa", Alias: "Bedroom", LocationCode: "SROU"},
		{ID: "dev-2", Mac: "bb", Alias: "Office", LocationCode: "SROU"},
		{ID: "dev-3", Mac: "cc", Alias: "Kitchen", LocationCode: "SROU"},
	}
)

// testFixture holds all test dependencies
type testFixture struct {
	repo       *repofake.FakeRepo
	auth       *cognitofake.FakeClient
	directory  *winixfake.FakeAccount
	control    *winixfake.FakeControl
	out        *bytes.Buffer
	dispatcher *dispatch.Dispatcher
}

func setupTestFixture(t *testing.T, initial *store.State) *testFixture {
	t.Helper()

	f := &testFixture{
		repo:      repofake.NewFakeRepo(initial),
		auth:      cognitofake.NewFakeClient(),
		directory: winixfake.NewFakeAccount(threeDevices...),
		control:   winixfake.NewFakeControl(),
		out:       &bytes.Buffer{},
	}
	f.auth.LoginSession = loginSession
	f.auth.RefreshSession = &sessions.Session{AccessToken: "access-refreshed", RefreshToken: "refresh-old"}

	d, err := dispatch.New(dispatch.Config{
		Store:     f.repo,
		Auth:      f.auth,
		Directory: f.directory,
		Control:   f.control,
		Out:       f.out,
	})
	require.NoError(t, err)
	f.dispatcher = d
	return f
}

func stateWith(session *sessions.Session, records ...devices.Record) *store.State {
	s := store.NewState()
	s.Session = session
	s.Devices = append(s.Devices, records...)
	return s
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := dispatch.New(dispatch.Config{})
	require.Error(t, err)
}

func TestLoginPersistsSessionAndDevicesOnce(t *testing.T) {
	f := setupTestFixture(t, nil)

	require.NoError(t, f.dispatcher.Login(context.Background(), "user@example.com", "hunter2"))

	require.Equal(t, 1, f.repo.Saves())
	saved := f.repo.State()
	require.Equal(t, loginSession, saved.Session)
	require.Equal(t, threeDevices, saved.Devices)
	require.Equal(t, []string{"user@example.com"}, f.directory.Registered)
	require.Equal(t, 1, f.directory.Checks)
	require.Equal(t, "Ok\n", f.out.String())
}

func TestLoginReplacesDeviceListWholesale(t *testing.T) {
	f := setupTestFixture(t, stateWith(existingSession, devices.Record{ID: "stale"}))
	f.directory.Devices = []devices.Record{{ID: "fresh"}}

	require.NoError(t, f.dispatcher.Login(context.Background(), "user@example.com", "hunter2"))
	require.Equal(t, []devices.Record{{ID: "fresh"}}, f.repo.State().Devices)
}

func TestLoginFailurePersistsNothing(t *testing.T) {
	initial := stateWith(existingSession, devices.Record{ID: "dev-1"})

	tests := []struct {
		name    string
		breakIt func(f *testFixture)
		wantErr error
	}{
		{"rejected credentials", func(f *testFixture) { f.auth.LoginErr = apperrors.ErrAuthenticationFailed }, apperrors.ErrAuthenticationFailed},
		{"register fails", func(f *testFixture) { f.directory.RegisterErr = errors.New("register") }, nil},
		{"token check fails", func(f *testFixture) { f.directory.CheckErr = errors.New("check") }, nil},
		{"device list fails", func(f *testFixture) { f.directory.ListErr = apperrors.ErrAuthenticationFailed }, apperrors.ErrAuthenticationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupTestFixture(t, initial)
			tt.breakIt(f)

			err := f.dispatcher.Login(context.Background(), "user@example.com", "hunter2")
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			require.Zero(t, f.repo.Saves())
			require.Equal(t, initial, f.repo.State())
			require.Empty(t, f.out.String())
		})
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	f := setupTestFixture(t, nil)
	require.Error(t, f.dispatcher.Login(context.Background(), "", "hunter2"))
	require.Zero(t, f.auth.Calls())
}

func TestLoginUnreadableConfig(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.repo.LoadErr = apperrors.ErrConfigUnreadable

	err := f.dispatcher.Login(context.Background(), "user@example.com", "hunter2")
	require.ErrorIs(t, err, apperrors.ErrConfigUnreadable)
	require.Zero(t, f.auth.Calls())
}

func TestRefreshWithoutSession(t *testing.T) {
	f := setupTestFixture(t, stateWith(nil, threeDevices...))

	err := f.dispatcher.Refresh(context.Background())
	require.ErrorIs(t, err, apperrors.ErrNoSession)
	require.Zero(t, f.auth.Calls())
	require.Zero(t, f.repo.Saves())
}

func TestRefreshReplacesSessionOnly(t *testing.T) {
	f := setupTestFixture(t, stateWith(existingSession, threeDevices[:1]...))

	require.NoError(t, f.dispatcher.Refresh(context.Background()))

	require.Equal(t, []string{"refresh-old"}, f.auth.Refreshes)
	require.Equal(t, 1, f.repo.Saves())
	saved := f.repo.State()
	require.Equal(t, &sessions.Session{UserID: "user-1", AccessToken: "access-refreshed", RefreshToken: "refresh-old"}, saved.Session)
	require.Equal(t, threeDevices[:1], saved.Devices)
	require.Zero(t, f.directory.Lists)
	require.Equal(t, "Ok\n", f.out.String())
}

func TestRefreshRejected(t *testing.T) {
	initial := stateWith(existingSession)
	f := setupTestFixture(t, initial)
	f.auth.RefreshErr = apperrors.ErrAuthenticationFailed

	require.ErrorIs(t, f.dispatcher.Refresh(context.Background()), apperrors.ErrAuthenticationFailed)
	require.Zero(t, f.repo.Saves())
	require.Equal(t, initial, f.repo.State())
}

func TestRefreshDevices(t *testing.T) {
	f := setupTestFixture(t, stateWith(existingSession, devices.Record{ID: "stale"}))

	require.NoError(t, f.dispatcher.RefreshDevices(context.Background()))

	require.Equal(t, 1, f.repo.Saves())
	saved := f.repo.State()
	require.Equal(t, existingSession, saved.Session)
	require.Equal(t, threeDevices, saved.Devices)
	require.Equal(t, "Ok\n", f.out.String())
}

func TestRefreshDevicesWithoutSession(t *testing.T) {
	f := setupTestFixture(t, nil)

	require.ErrorIs(t, f.dispatcher.RefreshDevices(context.Background()), apperrors.ErrNoSession)
	require.Zero(t, f.directory.Lists)
	require.Zero(t, f.repo.Saves())
}

func TestRefreshDevicesFailurePersistsNothing(t *testing.T) {
	f := setupTestFixture(t, stateWith(existingSession, devices.Record{ID: "stale"}))
	f.directory.ListErr = apperrors.ErrAuthenticationFailed

	require.ErrorIs(t, f.dispatcher.RefreshDevices(context.Background()), apperrors.ErrAuthenticationFailed)
	require.Zero(t, f.repo.Saves())
}

func TestDevicesListing(t *testing.T) {
	f := setupTestFixture(t, stateWith(existingSession, threeDevices...))

	require.NoError(t, f.dispatcher.Devices())

	out := f.out.String()
	require.True(t, strings.HasPrefix(out, "3 devices:\n"))
	require.Equal(t, 3, strings.Count(out, "Device#"))
	require.Equal(t, 1, strings.Count(out, "(default)"))
	require.Contains(t, out, "Device#0 (default) -------------------------------\n")
	require.Contains(t, out, "Device#1 -----------------------------------------\n")
	require.Contains(t, out, "      Device ID : dev-2\n")
	require.Contains(t, out, "          Alias : Kitchen\n")
	require.True(t, strings.HasSuffix(out, "Missing a device? You might need to run refresh.\n"))
	require.Zero(t, f.repo.Saves())
}

func TestDevicesEmpty(t *testing.T) {
	f := setupTestFixture(t, nil)

	require.NoError(t, f.dispatcher.Devices())
	require.Equal(t, "0 devices:\nMissing a device? You might need to run refresh.\n", f.out.String())
}

func TestFanWithoutDevices(t *testing.T) {
	f := setupTestFixture(t, stateWith(existingSession))

	require.ErrorIs(t, f.dispatcher.Fan(context.Background(), devices.FanHigh), apperrors.ErrNoDevice)
	require.Empty(t, f.control.Commands)
}

func TestPowerWithoutDevices(t *testing.T) {
	f := setupTestFixture(t, nil)

	require.ErrorIs(t, f.dispatcher.Power(context.Background(), devices.PowerOn), apperrors.ErrNoDevice)
	require.Empty(t, f.control.Commands)
}

func TestFanTargetsDefaultDevice(t *testing.T) {
	f := setupTestFixture(t, stateWith(existingSession, threeDevices...))

	require.NoError(t, f.dispatcher.Fan(context.Background(), devices.FanTurbo))

	require.Len(t, f.control.Commands, 1)
	cmd := f.control.Commands[0]
	require.Equal(t, "dev-1", cmd.DeviceID)
	require.Equal(t, devices.FanTurbo, *cmd.Fan)
	require.Zero(t, f.repo.Saves())
	require.Equal(t, "ok\n", f.out.String())
}

func TestPowerTargetsDefaultDevice(t *testing.T) {
	f := setupTestFixture(t, stateWith(existingSession, threeDevices...))

	require.NoError(t, f.dispatcher.Power(context.Background(), devices.PowerOff))

	require.Len(t, f.control.Commands, 1)
	require.Equal(t, "dev-1", f.control.Commands[0].DeviceID)
	require.Equal(t, devices.PowerOff, *f.control.Commands[0].Power)
	require.Zero(t, f.repo.Saves())
}

func TestControlErrorSurfaced(t *testing.T) {
	f := setupTestFixture(t, stateWith(existingSession, threeDevices...))
	f.control.Err = apperrors.ErrControl

	require.ErrorIs(t, f.dispatcher.Power(context.Background(), devices.PowerOn), apperrors.ErrControl)
	require.Empty(t, f.out.String())
	require.Zero(t, f.repo.Saves())
}
