package problem

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Format of an exercise file
type Format string

// Supported formats
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatOf returns the format by file extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("unsupported exercise file %s", path)
	}
}

// Parse decodes and validates an exercise
func Parse(b []byte, f Format) (*Exercise, error) {
	var e Exercise
	switch f {
	case FormatYAML:
		if err := yaml.Unmarshal(b, &e); err != nil {
			return nil, err
		}
	case FormatTOML:
		d := toml.NewDecoder(bytes.NewReader(b))
		d.DisallowUnknownFields()
		if err := d.Decode(&e); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", f)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// Load reads an exercise from a yaml or toml file
func Load(path string) (*Exercise, error) {
	f, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	e, err := Parse(b, f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return e, nil
}

// LoadDir reads every exercise file in dir, sorted by id
func LoadDir(dir string) ([]*Exercise, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var ret []*Exercise
	seen := make(map[int]string)
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		if _, err := FormatOf(ent.Name()); err != nil {
			continue
		}
		p := filepath.Join(dir, ent.Name())
		e, err := Load(p)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[e.ID]; ok {
			return nil, fmt.Errorf("exercise id %d defined in both %s and %s", e.ID, prev, p)
		}
		seen[e.ID] = p
		ret = append(ret, e)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].ID < ret[j].ID })
	return ret, nil
}

// Set is an immutable collection of exercises indexed by id
type Set struct {
	list []*Exercise
	byID map[int]*Exercise
}

// NewSet creates set from exercises
func NewSet(list []*Exercise) *Set {
	s := &Set{list: list, byID: make(map[int]*Exercise, len(list))}
	for _, e := range list {
		s.byID[e.ID] = e
	}
	return s
}

// List returns all exercises sorted by id
func (s *Set) List() []*Exercise {
	return s.list
}

// Get returns the exercise with the id
func (s *Set) Get(id int) (*Exercise, bool) {
	e, ok := s.byID[id]
	return e, ok
}

// Filter returns exercises matching all given criteria in id order.
// Empty category, DifficultyUnknown and empty term match everything.
// Category compares case-insensitively; term is a case-insensitive
// substring of the title or description.
func (s *Set) Filter(category string, d Difficulty, term string) []*Exercise {
	term = strings.ToLower(term)
	ret := make([]*Exercise, 0, len(s.list))
	for _, e := range s.list {
		if category != "" && !strings.EqualFold(e.Category, category) {
			continue
		}
		if d != DifficultyUnknown && e.Difficulty != d {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(e.Title), term) &&
			!strings.Contains(strings.ToLower(e.Description), term) {
			continue
		}
		ret = append(ret, e)
	}
	return ret
}
