package synth

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is a glossary file extending the built-in tables:
//
//	acronyms:
//	  Cagr: CAGR
//	glossary:
//	  Zakat: الزكاة
//	  Nisab Threshold: حد النصاب
type File struct {
	Acronyms map[string]string `yaml:"acronyms,omitempty"`
	Glossary map[string]string `yaml:"glossary,omitempty"`
}

// LoadFile reads a glossary file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading glossary %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing glossary %s: %w", path, err)
	}
	return &f, nil
}

// Extend adds acronyms and glossary entries, replacing existing ones with
// the same spelling.
func (s *Synthesizer) Extend(acronyms, glossary map[string]string) {
	if len(acronyms) > 0 {
		if s.Acronyms == nil {
			s.Acronyms = make(map[string]string, len(acronyms))
		}
		for k, v := range acronyms {
			for old := range s.Acronyms {
				if strings.EqualFold(old, k) {
					delete(s.Acronyms, old)
				}
			}
			s.Acronyms[k] = v
		}
	}
	if len(glossary) > 0 {
		if s.Glossary == nil {
			s.Glossary = NewGlossary(nil)
		}
		s.Glossary.Add(glossary)
	}
}
