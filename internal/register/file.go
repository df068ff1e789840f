// internal/register/file.go
package register

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/renameio/v2"

	"github.com/tamzrod/fatigue-relay/internal/status"
)

// File is a cross-process register: one ASCII digit in a file, guarded by
// an advisory lock on "<path>.lock".
// The in-process mutex serializes goroutines; the file lock serializes processes.
type File struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

// NewFile opens (and seeds with Normal if absent) a file register.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("register: path required")
	}

	f := &File{
		path: path,
		lock: flock.New(path + ".lock"),
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.lock.Lock(); err != nil {
		return nil, fmt.Errorf("register: lock %s: %w", path, err)
	}
	defer f.lock.Unlock()

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := f.store(status.Normal); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("register: stat %s: %w", path, err)
	}

	return f, nil
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

func (f *File) Read() (status.Code, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.lock.Lock(); err != nil {
		return 0, fmt.Errorf("register: lock %s: %w", f.path, err)
	}
	defer f.lock.Unlock()

	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return status.Normal, nil
	}
	if err != nil {
		return 0, fmt.Errorf("register: read %s: %w", f.path, err)
	}

	v, err := strconv.Atoi(string(bytes.TrimSpace(raw)))
	if err != nil {
		return 0, fmt.Errorf("register: corrupt value in %s: %w", f.path, err)
	}
	// An out-of-range value on disk is corruption, never a state.
	return status.ParseCode(v)
}

func (f *File) Update(code status.Code) error {
	if err := validate(code); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("register: lock %s: %w", f.path, err)
	}
	defer f.lock.Unlock()

	return f.store(code)
}

// store must be called with both locks held.
func (f *File) store(code status.Code) error {
	data := []byte(strconv.Itoa(int(code)) + "\n")
	if err := renameio.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("register: write %s: %w", f.path, err)
	}
	return nil
}
