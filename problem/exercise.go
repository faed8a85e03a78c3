// Package problem loads practice exercises and their test cases.
package problem

import (
	"errors"
	"fmt"
	"strings"

	"github.com/codepractice/remote-judge/language"
	"github.com/codepractice/remote-judge/types"
)

// Difficulty of an exercise
type Difficulty int

// Difficulties
const (
	DifficultyUnknown Difficulty = iota
	DifficultyEasy
	DifficultyMedium
	DifficultyHard
)

var difficultyToString = []string{
	"unknown",
	"easy",
	"medium",
	"hard",
}

func (d Difficulty) String() string {
	if int(d) < 0 || int(d) >= len(difficultyToString) {
		return difficultyToString[0]
	}
	return difficultyToString[d]
}

// MarshalText implements encoding.TextMarshaler
func (d Difficulty) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Difficulty) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	for i, v := range difficultyToString[1:] {
		if s == v {
			*d = Difficulty(i + 1)
			return nil
		}
	}
	return fmt.Errorf("invalid difficulty %q", s)
}

// Exercise defines a practice exercise
type Exercise struct {
	ID          int              `json:"id" yaml:"id" toml:"id"`
	Title       string           `json:"title" yaml:"title" toml:"title"`
	Difficulty  Difficulty       `json:"difficulty" yaml:"difficulty" toml:"difficulty"`
	Category    string           `json:"category" yaml:"category" toml:"category"`
	Description string           `json:"description" yaml:"description" toml:"description"`
	Template    string           `json:"template" yaml:"template" toml:"template"`
	Language    types.Language   `json:"language,omitempty" yaml:"language,omitempty" toml:"language,omitempty"`
	Hints       []string         `json:"hints,omitempty" yaml:"hints,omitempty" toml:"hints,omitempty"`
	Explanation string           `json:"explanation,omitempty" yaml:"explanation,omitempty" toml:"explanation,omitempty"`
	TestCases   []types.TestCase `json:"testCases" yaml:"testCases" toml:"test_cases"`
}

// Lang returns the language of the exercise, guessed from the template when not set
func (e *Exercise) Lang() types.Language {
	if e.Language != "" {
		return e.Language
	}
	return language.Detect(e.Template)
}

// Validate checks the exercise can be graded
func (e *Exercise) Validate() error {
	var errs []error
	if strings.TrimSpace(e.Title) == "" {
		errs = append(errs, errors.New("missing title"))
	}
	if len(e.TestCases) == 0 {
		errs = append(errs, errors.New("no test cases"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("exercise %d: %w", e.ID, err)
	}
	return nil
}
