// Package logging builds the process logger shared by the binaries.
package logging

import "go.uber.org/zap"

// New returns a production JSON logger, or a console development logger
// when debug is set.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
