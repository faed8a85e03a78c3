// Package request builds normalized execution requests from user input.
package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/codepractice/remote-judge/types"
)

// DefaultLimits returns the limits applied when none are configured
func DefaultLimits() types.Limits {
	return types.Limits{
		CPUTime:     5 * time.Second,
		WallTime:    10 * time.Second,
		CompileTime: 10 * time.Second,
		Memory:      128000 << 10,
	}
}

// Builder builds execution requests with fixed language and limits.
// Limits come from configuration only and are never taken from user input.
type Builder struct {
	Language types.Language
	Version  string
	Limits   types.Limits
}

// NewBuilder creates a builder, zero limits are replaced by defaults
func NewBuilder(lang types.Language, version string, limits types.Limits) *Builder {
	def := DefaultLimits()
	if limits.CPUTime <= 0 {
		limits.CPUTime = def.CPUTime
	}
	if limits.WallTime <= 0 {
		limits.WallTime = def.WallTime
	}
	if limits.CompileTime <= 0 {
		limits.CompileTime = def.CompileTime
	}
	if limits.Memory == 0 {
		limits.Memory = def.Memory
	}
	return &Builder{
		Language: lang,
		Version:  version,
		Limits:   limits,
	}
}

// Validate checks the source code before anything is sent to a sandbox
func Validate(source string) error {
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("build request: %w", types.ErrEmptyProgram)
	}
	return nil
}

// Build creates the request for a single run
func (b *Builder) Build(source, stdin string) (types.ExecutionRequest, error) {
	if err := Validate(source); err != nil {
		return types.ExecutionRequest{}, err
	}
	return types.ExecutionRequest{
		Source:          source,
		Stdin:           stdin,
		Language:        b.Language,
		LanguageVersion: b.Version,
		Limits:          b.Limits,
	}, nil
}
