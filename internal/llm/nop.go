package llm

import (
	"context"
	"errors"
)

// ErrDisabled is returned by NopProvider so callers exercise their
// documented failure policy (fail open or fail safe) when no model is
// configured.
var ErrDisabled = errors.New("llm disabled")

// NopProvider is used when llm.enabled is false.
type NopProvider struct{}

// NewNopProvider returns a NopProvider.
func NewNopProvider() *NopProvider { return &NopProvider{} }

// Complete always fails with ErrDisabled.
func (p *NopProvider) Complete(_ context.Context, _ string) (string, error) {
	return "", ErrDisabled
}
