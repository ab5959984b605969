package store

import (
	"github.com/jrsteele09/winix/devices"
	"github.com/jrsteele09/winix/sessions"
)

// State is the unit of persistence: the last-known session and the device
// list it was fetched with.
type State struct {
	Session *sessions.Session `json:"cognito"`
	Devices []devices.Record  `json:"devices"`
}

// NewState returns an empty state (no session, no devices).
func NewState() *State {
	return &State{Devices: []devices.Record{}}
}

// DefaultDevice returns the first device, or false when there are none.
func (s *State) DefaultDevice() (devices.Record, bool) {
	if s == nil || len(s.Devices) == 0 {
		return devices.Record{}, false
	}
	return s.Devices[0], true
}

// Repo loads and saves State. Implementations write the whole state in one
// operation; there is no partial update.
type Repo interface {
	Load() (*State, error)
	Save(state *State) error
}
