package intent

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/program-assistant/internal/core/domain"
)

//go:embed vocabulary.yaml
var defaultVocabulary []byte

// Vocabulary holds the keyword tables the classifier and the recommender work from.
type Vocabulary struct {
	RecommendationPatterns []string      `yaml:"recommendation_patterns"`
	BackgroundTags         []TagRule     `yaml:"background_tags"`
	Programs               []ProgramRule `yaml:"programs"`
	ElectiveKeywords       []string      `yaml:"elective_keywords"`
}

type TagRule struct {
	Tag      domain.BackgroundTag `yaml:"tag"`
	Keywords []string             `yaml:"keywords"`
}

// ProgramRule matches when any phrase occurs as a substring or any word occurs
// as a whole word.
type ProgramRule struct {
	Program domain.Program `yaml:"program"`
	Phrases []string       `yaml:"phrases"`
	Words   []string       `yaml:"words"`
}

func DefaultVocabulary() (Vocabulary, error) {
	return ParseVocabulary(defaultVocabulary)
}

// LoadVocabulary reads tables from path, or the built-in tables when path is empty.
func LoadVocabulary(path string) (Vocabulary, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultVocabulary()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Vocabulary{}, fmt.Errorf("read vocabulary %s: %w", path, err)
	}
	return ParseVocabulary(data)
}

func ParseVocabulary(data []byte) (Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Vocabulary{}, fmt.Errorf("parse vocabulary: %w", err)
	}
	if err := v.validate(); err != nil {
		return Vocabulary{}, err
	}
	return v, nil
}

func (v Vocabulary) validate() error {
	if len(v.RecommendationPatterns) == 0 {
		return errors.New("vocabulary: recommendation_patterns is empty")
	}
	for i, rule := range v.BackgroundTags {
		if rule.Tag == "" || len(rule.Keywords) == 0 {
			return fmt.Errorf("vocabulary: background tag #%d needs a tag and keywords", i)
		}
	}
	for i, rule := range v.Programs {
		if !rule.Program.Valid() {
			return fmt.Errorf("vocabulary: program rule #%d has unknown program %q", i, rule.Program)
		}
		if len(rule.Phrases) == 0 && len(rule.Words) == 0 {
			return fmt.Errorf("vocabulary: program rule #%d has no phrases or words", i)
		}
	}
	return nil
}
