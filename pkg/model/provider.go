package model

import (
	"context"
	"strings"
)

// Provider builds Model instances for one backend. Implementations are
// registered with a Factory under their Name.
type Provider interface {
	// Name is the identifier ModelConfig.Provider selects the backend by.
	Name() string
	NewModel(ctx context.Context, cfg ModelConfig) (Model, error)
}

// ModelConfig carries the settings a Provider needs to build a Model.
// Provider selects the backend; Model names the remote model, with Name
// doubling as a fallback when Model is empty. Backend-specific knobs go
// through Extra instead of widening this struct.
type ModelConfig struct {
	Name     string
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Headers  map[string]string
	Extra    map[string]any
}

// ResolvedModel returns the remote model identifier: Model when set,
// otherwise Name. The result may still be empty, in which case the
// provider applies its own default.
func (c ModelConfig) ResolvedModel() string {
	if m := strings.TrimSpace(c.Model); m != "" {
		return m
	}
	return strings.TrimSpace(c.Name)
}
