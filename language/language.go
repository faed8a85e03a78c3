// Package language describes how each sandbox backend names, compiles and
// runs a supported programming language.
package language

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/codepractice/remote-judge/types"
	"github.com/goccy/go-yaml"
	"github.com/google/shlex"
)

const pathEnv = "PATH=/usr/local/bin:/usr/bin:/bin"

// Language defines the way to run program on every supported backend
type Language struct {
	ID types.Language `yaml:"id"`

	// Judge0 language_id
	Judge0ID int `yaml:"judge0Id"`

	// Piston runtime name and version
	PistonLanguage string `yaml:"pistonLanguage"`
	PistonVersion  string `yaml:"pistonVersion"`

	// go-judge command lines, CompileCmd is empty for interpreted languages
	SourceFileName   string   `yaml:"sourceFileName"`
	CompiledFileName string   `yaml:"compiledFileName"`
	CompileCmd       string   `yaml:"compileCmd"`
	RunCmd           string   `yaml:"runCmd"`
	Env              []string `yaml:"env"`
}

// Compiled reports whether the language needs a compile step
func (l Language) Compiled() bool {
	return l.CompileCmd != ""
}

// CompileArgs splits the compile command line into arguments
func (l Language) CompileArgs() ([]string, error) {
	if !l.Compiled() {
		return nil, nil
	}
	return splitCmd(l.CompileCmd)
}

// RunArgs splits the run command line into arguments
func (l Language) RunArgs() ([]string, error) {
	return splitCmd(l.RunCmd)
}

// Environ returns the environment variables for the sandboxed process
func (l Language) Environ() []string {
	if len(l.Env) == 0 {
		return []string{pathEnv}
	}
	return l.Env
}

func splitCmd(cmd string) ([]string, error) {
	args, err := shlex.Split(cmd)
	if err != nil {
		return nil, fmt.Errorf("parse command %q: %w", cmd, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return args, nil
}

// Registry holds the known languages
type Registry struct {
	mu    sync.RWMutex
	langs map[types.Language]Language
}

// NewRegistry creates registry from the given languages
func NewRegistry(langs ...Language) *Registry {
	r := &Registry{langs: make(map[types.Language]Language, len(langs))}
	for _, l := range langs {
		r.langs[l.ID] = l
	}
	return r
}

// Default creates registry with the builtin languages
func Default() *Registry {
	return NewRegistry(builtin...)
}

// Get returns the language with the given id
func (r *Registry) Get(id types.Language) (Language, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.langs[types.Language(strings.ToLower(string(id)))]
	if !ok {
		return Language{}, fmt.Errorf("language %q is not supported", id)
	}
	return l, nil
}

// IDs returns the sorted ids of all registered languages
func (r *Registry) IDs() []types.Language {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]types.Language, 0, len(r.langs))
	for id := range r.langs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ByFileName returns the language whose source file has the same extension
// as name
func (r *Registry) ByFileName(name string) (types.Language, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return "", false
	}
	for _, id := range r.IDs() {
		l, _ := r.Get(id)
		if filepath.Ext(l.SourceFileName) == ext {
			return id, true
		}
	}
	return "", false
}

type registryFile struct {
	Languages []Language `yaml:"languages"`
}

// LoadFile adds or replaces languages from a yaml file
func (r *Registry) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var f registryFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("parse language file %s: %w", path, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range f.Languages {
		if l.ID == "" {
			return fmt.Errorf("language file %s: language without id", path)
		}
		l.ID = types.Language(strings.ToLower(string(l.ID)))
		r.langs[l.ID] = l
	}
	return nil
}

// Detect guesses the language of an exercise from its code template
func Detect(template string) types.Language {
	if strings.Contains(template, "#include <stdio.h>") {
		return "c"
	}
	return "javascript"
}
