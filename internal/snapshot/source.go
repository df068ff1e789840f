// internal/snapshot/source.go
package snapshot

import (
	"context"

	"github.com/tamzrod/fatigue-relay/internal/generator"
	"github.com/tamzrod/fatigue-relay/internal/register"
	"github.com/tamzrod/fatigue-relay/internal/status"
)

// Reading is one value taken from a Source.
type Reading struct {
	Code     status.Code
	Counters *status.Counters // nil when the source has no counters
}

// Source yields the current status for the next snapshot.
type Source interface {
	Next(ctx context.Context) (Reading, error)
}

// RegisterSource reads the live shared register.
type RegisterSource struct {
	Register register.Register
}

func (s RegisterSource) Next(context.Context) (Reading, error) {
	code, err := s.Register.Read()
	if err != nil {
		return Reading{}, err
	}
	return Reading{Code: code}, nil
}

// GeneratorSource advances a synthetic Markov chain.
type GeneratorSource struct {
	Generator *generator.Generator
}

func (s GeneratorSource) Next(context.Context) (Reading, error) {
	code, counters := s.Generator.Emit()
	return Reading{Code: code, Counters: &counters}, nil
}
