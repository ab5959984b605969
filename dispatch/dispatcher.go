package dispatch

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/jrsteele09/winix/devices"
	"github.com/jrsteele09/winix/sessions"
	"github.com/jrsteele09/winix/store"
)

// Authenticator obtains sessions from the identity provider.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*sessions.Session, error)
	Refresh(ctx context.Context, userID, refreshToken string) (*sessions.Session, error)
}

// DeviceDirectory lists the devices paired with an account.
type DeviceDirectory interface {
	RegisterUser(ctx context.Context, session *sessions.Session, email string) error
	CheckAccessToken(ctx context.Context, session *sessions.Session) error
	ListDevices(ctx context.Context, session *sessions.Session) ([]devices.Record, error)
}

// DeviceController changes the state of one device.
type DeviceController interface {
	SetFan(ctx context.Context, deviceID string, level devices.FanLevel) error
	SetPower(ctx context.Context, deviceID string, state devices.PowerState) error
}

// Config holds everything a Dispatcher needs. There is no package level state.
type Config struct {
	Store     store.Repo
	Auth      Authenticator
	Directory DeviceDirectory
	Control   DeviceController
	Out       io.Writer // command output, defaults to os.Stdout
}

// Dispatcher runs one command per call. Each mutating command loads the
// state, performs its remote calls, and saves the result exactly once.
type Dispatcher struct {
	store     store.Repo
	auth      Authenticator
	directory DeviceDirectory
	control   DeviceController
	out       io.Writer
}

// New validates cfg and returns a Dispatcher.
func New(cfg Config) (*Dispatcher, error) {
	if cfg.Store == nil {
		return nil, errors.New("[dispatch.New] Store is required")
	}
	if cfg.Auth == nil {
		return nil, errors.New("[dispatch.New] Auth is required")
	}
	if cfg.Directory == nil {
		return nil, errors.New("[dispatch.New] Directory is required")
	}
	if cfg.Control == nil {
		return nil, errors.New("[dispatch.New] Control is required")
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	return &Dispatcher{
		store:     cfg.Store,
		auth:      cfg.Auth,
		directory: cfg.Directory,
		control:   cfg.Control,
		out:       out,
	}, nil
}
