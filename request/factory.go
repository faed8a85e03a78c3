package request

import (
	"github.com/codepractice/remote-judge/language"
	"github.com/codepractice/remote-judge/types"
)

// Factory creates builders for the languages of a registry.
// The version override only applies to the default language.
type Factory struct {
	Default   types.Language
	Version   string
	Limits    types.Limits
	Languages *language.Registry
}

// Builder returns the builder for lang, or the default language when empty
func (f *Factory) Builder(lang types.Language) (*Builder, error) {
	if lang == "" {
		lang = f.Default
	}
	l, err := f.Languages.Get(lang)
	if err != nil {
		return nil, err
	}
	version := ""
	if l.ID == f.Default {
		version = f.Version
	}
	return NewBuilder(l.ID, version, f.Limits), nil
}
