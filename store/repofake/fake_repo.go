package repofake

import (
	"encoding/json"
	"sync"

	"github.com/jrsteele09/winix/devices"
	"github.com/jrsteele09/winix/store"
)

var _ store.Repo = (*FakeRepo)(nil)

// FakeRepo keeps State in memory and records how many times it was saved.
// Loaded and saved states are deep copies so callers cannot alias the
// stored value.
type FakeRepo struct {
	state   *store.State
	saves   int
	LoadErr error
	SaveErr error
	lock    sync.RWMutex
}

func NewFakeRepo(initial *store.State) *FakeRepo {
	if initial == nil {
		initial = store.NewState()
	}
	return &FakeRepo{state: clone(initial)}
}

func (r *FakeRepo) Load() (*store.State, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.LoadErr != nil {
		return nil, r.LoadErr
	}
	return clone(r.state), nil
}

func (r *FakeRepo) Save(state *store.State) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.state = clone(state)
	r.saves++
	return nil
}

// Saves returns the number of successful Save calls.
func (r *FakeRepo) Saves() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.saves
}

// State returns a copy of the last stored state.
func (r *FakeRepo) State() *store.State {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return clone(r.state)
}

func clone(s *store.State) *store.State {
	data, err := json.Marshal(s)
	if err != nil {
		panic(err)
	}
	out := store.NewState()
	if err := json.Unmarshal(data, out); err != nil {
		panic(err)
	}
	if out.Devices == nil {
		out.Devices = []devices.Record{}
	}
	return out
}
