package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jrsteele09/winix/devices"
	apperrors "github.com/jrsteele09/winix/internal/errors"
	"github.com/jrsteele09/winix/store"
	"github.com/rs/zerolog/log"
)

const deviceHeaderWidth = 50

// Login authenticates, fetches the device list, and persists both together.
// Nothing is written unless every step succeeds.
func (d *Dispatcher) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return errors.New("username and password are required")
	}

	state, err := d.store.Load()
	if err != nil {
		return err
	}

	session, err := d.auth.Login(ctx, username, password)
	if err != nil {
		return err
	}
	if err := d.directory.RegisterUser(ctx, session, username); err != nil {
		return err
	}
	if err := d.directory.CheckAccessToken(ctx, session); err != nil {
		return err
	}
	records, err := d.directory.ListDevices(ctx, session)
	if err != nil {
		return err
	}

	state.Session = session
	state.Devices = records
	if err := d.store.Save(state); err != nil {
		return apperrors.Wrapf(err, "saving session")
	}

	log.Info().Str("user_id", session.UserID).Int("devices", len(records)).Msg("logged in")
	fmt.Fprintln(d.out, "Ok")
	return nil
}

// Refresh renews the stored session's tokens. The device list is untouched.
func (d *Dispatcher) Refresh(ctx context.Context) error {
	state, err := d.loadWithSession()
	if err != nil {
		return err
	}

	session, err := d.auth.Refresh(ctx, state.Session.UserID, state.Session.RefreshToken)
	if err != nil {
		return err
	}
	if err := d.directory.CheckAccessToken(ctx, session); err != nil {
		return err
	}

	state.Session = session
	if err := d.store.Save(state); err != nil {
		return apperrors.Wrapf(err, "saving session")
	}

	log.Info().Str("user_id", session.UserID).Time("expires", session.Expiry()).Msg("session refreshed")
	fmt.Fprintln(d.out, "Ok")
	return nil
}

// RefreshDevices replaces the stored device list with the account's current one.
func (d *Dispatcher) RefreshDevices(ctx context.Context) error {
	state, err := d.loadWithSession()
	if err != nil {
		return err
	}
	if tok := state.Session.Token(); !tok.Valid() {
		log.Warn().Time("expired", tok.Expiry).Msg("access token has expired, run 'login --refresh' if this fails")
	}

	records, err := d.directory.ListDevices(ctx, state.Session)
	if err != nil {
		return err
	}

	state.Devices = records
	if err := d.store.Save(state); err != nil {
		return apperrors.Wrapf(err, "saving devices")
	}

	log.Info().Int("devices", len(records)).Msg("device list refreshed")
	fmt.Fprintln(d.out, "Ok")
	return nil
}

// Devices prints the stored device list. The first device is the default.
func (d *Dispatcher) Devices() error {
	state, err := d.store.Load()
	if err != nil {
		return err
	}

	fmt.Fprintf(d.out, "%d devices:\n", len(state.Devices))
	for i, device := range state.Devices {
		header := fmt.Sprintf("Device#%d ", i)
		if i == 0 {
			header = fmt.Sprintf("Device#%d (default) ", i)
		}
		if pad := deviceHeaderWidth - len(header); pad > 0 {
			header += strings.Repeat("-", pad)
		}
		fmt.Fprintln(d.out, header)

		for _, field := range [...]struct{ name, value string }{
			{"Device ID", device.ID},
			{"Mac", device.Mac},
			{"Alias", device.Alias},
			{"Location", device.LocationCode},
		} {
			fmt.Fprintf(d.out, "%15s : %s\n", field.name, field.value)
		}
		fmt.Fprintln(d.out)
	}
	fmt.Fprintln(d.out, "Missing a device? You might need to run refresh.")
	return nil
}

// Fan sets the airflow of the default device.
func (d *Dispatcher) Fan(ctx context.Context, level devices.FanLevel) error {
	device, err := d.defaultDevice()
	if err != nil {
		return err
	}
	if err := d.control.SetFan(ctx, device.ID, level); err != nil {
		return err
	}
	fmt.Fprintln(d.out, "ok")
	return nil
}

// Power switches the default device on or off.
func (d *Dispatcher) Power(ctx context.Context, state devices.PowerState) error {
	device, err := d.defaultDevice()
	if err != nil {
		return err
	}
	if err := d.control.SetPower(ctx, device.ID, state); err != nil {
		return err
	}
	fmt.Fprintln(d.out, "ok")
	return nil
}

func (d *Dispatcher) loadWithSession() (*store.State, error) {
	state, err := d.store.Load()
	if err != nil {
		return nil, err
	}
	if state.Session == nil {
		return nil, apperrors.ErrNoSession
	}
	return state, nil
}

func (d *Dispatcher) defaultDevice() (devices.Record, error) {
	state, err := d.store.Load()
	if err != nil {
		return devices.Record{}, err
	}
	device, ok := state.DefaultDevice()
	if !ok {
		return devices.Record{}, apperrors.ErrNoDevice
	}
	log.Debug().Str("device_id", device.ID).Str("alias", device.Alias).Msg("default device")
	return device, nil
}
