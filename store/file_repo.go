package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jrsteele09/winix/devices"
	apperrors "github.com/jrsteele09/winix/internal/errors"
	"github.com/tidwall/jsonc"
)

const (
	dirMode  = 0o700
	fileMode = 0o600
)

// FileRepo persists State as JSON at a fixed path. Concurrent processes using
// the same path are not coordinated; the last writer wins.
type FileRepo struct {
	path string
}

var _ Repo = (*FileRepo)(nil)

func NewFileRepo(path string) *FileRepo {
	return &FileRepo{path: path}
}

func (r *FileRepo) Path() string {
	return r.path
}

func (r *FileRepo) Load() (*State, error) {
	return Load(r.path)
}

func (r *FileRepo) Save(state *State) error {
	return Save(r.path, state)
}

// Load reads the state at path. A missing file is not an error and yields an
// empty state. Anything else that prevents a well-formed state from being
// read fails with ErrConfigUnreadable.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewState(), nil
		}
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrConfigUnreadable, path, err)
	}

	state, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrConfigUnreadable, path, err)
	}
	return state, nil
}

func decode(data []byte) (*State, error) {
	// Hand-edited files may carry comments or trailing commas.
	var state State
	if err := json.Unmarshal(jsonc.ToJSON(data), &state); err != nil {
		return nil, err
	}
	if state.Session != nil && !state.Session.Complete() {
		return nil, errors.New("cognito: user_id, access_token and refresh_token are required")
	}
	for i, d := range state.Devices {
		if d.ID == "" {
			return nil, fmt.Errorf("devices[%d]: id is required", i)
		}
	}
	if state.Devices == nil {
		state.Devices = []devices.Record{}
	}
	return &state, nil
}

// Save writes state to path, creating the parent directory if needed. The
// data goes to a temporary file in the same directory which is then renamed
// over path, so an interrupted save leaves the previous file intact.
func Save(path string, state *State) error {
	if state == nil {
		state = NewState()
	}
	if state.Session != nil && !state.Session.Complete() {
		return errors.New("refusing to save incomplete session")
	}

	out := *state
	if out.Devices == nil {
		out.Devices = []devices.Record{}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	committed = true
	return nil
}
