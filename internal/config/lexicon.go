package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"topic-insights-go/internal/filter"
	"topic-insights-go/internal/gaps"
	"topic-insights-go/internal/intent"
)

// Lexicon holds the keyword lists of the filter, intent classifier and gap
// detector.
type Lexicon struct {
	Filter filter.Vocabulary `yaml:"filter"`
	Intent intent.Vocabulary `yaml:"intent"`
	Gaps   gaps.Vocabulary   `yaml:"gaps"`
}

func DefaultLexicon() Lexicon {
	return Lexicon{
		Filter: filter.DefaultVocabulary(),
		Intent: intent.DefaultVocabulary(),
		Gaps:   gaps.DefaultVocabulary(),
	}
}

// LoadLexicon reads a YAML override file. Lists present in the file replace
// the built-in ones; missing or empty lists keep the defaults. An empty path
// returns the defaults.
func LoadLexicon(path string) (Lexicon, error) {
	lex := DefaultLexicon()
	if path == "" {
		return lex, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return lex, fmt.Errorf("read lexicon: %w", err)
	}
	var over Lexicon
	if err := yaml.Unmarshal(data, &over); err != nil {
		return lex, fmt.Errorf("parse lexicon %s: %w", path, err)
	}

	override(&lex.Filter.Greetings, over.Filter.Greetings)
	override(&lex.Filter.JunkWords, over.Filter.JunkWords)
	override(&lex.Filter.Profanity, over.Filter.Profanity)
	override(&lex.Intent.Buying, over.Intent.Buying)
	override(&lex.Intent.Comparing, over.Intent.Comparing)
	override(&lex.Gaps.DontKnow, over.Gaps.DontKnow)
	override(&lex.Gaps.HumanEscalation, over.Gaps.HumanEscalation)
	return lex, nil
}

func override(dst *[]string, src []string) {
	if len(src) > 0 {
		*dst = src
	}
}

// Build constructs the matchers for this lexicon.
func (l Lexicon) Build() (*filter.Filter, *intent.Classifier, *gaps.Detector) {
	return filter.New(l.Filter), intent.New(l.Intent), gaps.New(l.Gaps)
}
