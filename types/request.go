package types

import (
	"errors"
	"time"
)

// ErrEmptyProgram is returned when the submitted source is blank.
// It is detected locally, before any request leaves the process.
var ErrEmptyProgram = errors.New("empty program")

// Language identifies a programming language, e.g. "c"
type Language string

// Limits defines resource limits applied by the remote sandbox
type Limits struct {
	CPUTime     time.Duration
	WallTime    time.Duration
	CompileTime time.Duration
	Memory      Size
}

// ExecutionRequest defines a single run of a program.
// It is built fresh for every run and never modified afterwards.
type ExecutionRequest struct {
	Source          string
	Stdin           string
	Language        Language
	LanguageVersion string
	Limits          Limits
}
