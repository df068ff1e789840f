// internal/register/memory.go
package register

import (
	"sync"

	"github.com/tamzrod/fatigue-relay/internal/status"
)

// Memory is an in-process register. Construct one per process group and
// pass it to every component that needs it.
type Memory struct {
	mu   sync.Mutex
	code status.Code
}

// NewMemory creates a register holding Normal.
func NewMemory() *Memory {
	return &Memory{code: status.Normal}
}

func (m *Memory) Read() (status.Code, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.code, nil
}

func (m *Memory) Update(code status.Code) error {
	if err := validate(code); err != nil {
		return err
	}
	m.mu.Lock()
	m.code = code
	m.mu.Unlock()
	return nil
}
