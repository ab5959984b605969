package winixfake

import (
	"context"
	"sync"

	"github.com/jrsteele09/winix/devices"
	"github.com/jrsteele09/winix/sessions"
)

// FakeAccount is an in-memory stand-in for winixapi.AccountClient.
type FakeAccount struct {
	Devices     []devices.Record
	RegisterErr error
	CheckErr    error
	ListErr     error

	Registered []string // emails passed to RegisterUser
	Checks     int
	Lists      int
	lock       sync.Mutex
}

func NewFakeAccount(records ...devices.Record) *FakeAccount {
	return &FakeAccount{Devices: records}
}

func (a *FakeAccount) RegisterUser(_ context.Context, _ *sessions.Session, email string) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.Registered = append(a.Registered, email)
	return a.RegisterErr
}

func (a *FakeAccount) CheckAccessToken(_ context.Context, _ *sessions.Session) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.Checks++
	return a.CheckErr
}

func (a *FakeAccount) ListDevices(_ context.Context, _ *sessions.Session) ([]devices.Record, error) {
	a.lock.Lock()
	defer a.lock.Unlock()

	a.Lists++
	if a.ListErr != nil {
		return nil, a.ListErr
	}
	return append([]devices.Record{}, a.Devices...), nil
}

// Command is one recorded control call.
type Command struct {
	DeviceID string
	Fan      *devices.FanLevel
	Power    *devices.PowerState
}

// FakeControl is an in-memory stand-in for winixapi.ControlClient.
type FakeControl struct {
	Err      error
	Commands []Command
	lock     sync.Mutex
}

func NewFakeControl() *FakeControl {
	return &FakeControl{}
}

func (c *FakeControl) SetFan(_ context.Context, deviceID string, level devices.FanLevel) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.Commands = append(c.Commands, Command{DeviceID: deviceID, Fan: &level})
	return c.Err
}

func (c *FakeControl) SetPower(_ context.Context, deviceID string, state devices.PowerState) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.Commands = append(c.Commands, Command{DeviceID: deviceID, Power: &state})
	return c.Err
}
