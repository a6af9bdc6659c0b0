package intent

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kirillkom/program-assistant/internal/core/domain"
)

// Classifier routes free text by keyword tables. It is read-only after New
// and safe for concurrent use.
type Classifier struct {
	patterns  []*regexp.Regexp
	tags      []TagRule
	programs  []ProgramRule
	electives []string
}

func New(v Vocabulary) (*Classifier, error) {
	if err := v.validate(); err != nil {
		return nil, err
	}
	c := &Classifier{
		patterns:  make([]*regexp.Regexp, 0, len(v.RecommendationPatterns)),
		tags:      make([]TagRule, 0, len(v.BackgroundTags)),
		programs:  make([]ProgramRule, 0, len(v.Programs)),
		electives: lowerAll(v.ElectiveKeywords),
	}
	for _, raw := range v.RecommendationPatterns {
		re, err := regexp.Compile(raw)
		if err != nil {
			return nil, fmt.Errorf("compile recommendation pattern %q: %w", raw, err)
		}
		c.patterns = append(c.patterns, re)
	}
	for _, rule := range v.BackgroundTags {
		c.tags = append(c.tags, TagRule{Tag: rule.Tag, Keywords: lowerAll(rule.Keywords)})
	}
	for _, rule := range v.Programs {
		c.programs = append(c.programs, ProgramRule{
			Program: rule.Program,
			Phrases: lowerAll(rule.Phrases),
			Words:   lowerAll(rule.Words),
		})
	}
	return c, nil
}

// NewDefault builds a classifier over the built-in tables.
func NewDefault() (*Classifier, error) {
	v, err := DefaultVocabulary()
	if err != nil {
		return nil, err
	}
	return New(v)
}

// IsRecommendation reports whether the text asks for elective advice
// rather than for a fact about a program.
func (c *Classifier) IsRecommendation(text string) bool {
	lowered := strings.ToLower(text)
	for _, re := range c.patterns {
		if re.MatchString(lowered) {
			return true
		}
	}
	return false
}

// BackgroundTags returns matched tags in table order without duplicates.
func (c *Classifier) BackgroundTags(text string) []domain.BackgroundTag {
	lowered := strings.ToLower(text)
	var out []domain.BackgroundTag
	seen := make(map[domain.BackgroundTag]struct{}, len(c.tags))
	for _, rule := range c.tags {
		if _, ok := seen[rule.Tag]; ok {
			continue
		}
		if containsAny(lowered, rule.Keywords) {
			seen[rule.Tag] = struct{}{}
			out = append(out, rule.Tag)
		}
	}
	return out
}

// DetectProgram returns the first program whose rule matches.
func (c *Classifier) DetectProgram(text string) (domain.Program, bool) {
	lowered := strings.ToLower(text)
	for _, rule := range c.programs {
		if containsAny(lowered, rule.Phrases) {
			return rule.Program, true
		}
		for _, word := range rule.Words {
			if containsWord(lowered, word) {
				return rule.Program, true
			}
		}
	}
	return "", false
}

// ElectiveKeywords returns the lowercased elective stems.
func (c *Classifier) ElectiveKeywords() []string {
	return append([]string(nil), c.electives...)
}

func containsAny(text string, needles []string) bool {
	for _, needle := range needles {
		if needle != "" && strings.Contains(text, needle) {
			return true
		}
	}
	return false
}

// containsWord reports whether word occurs in text with no word rune directly
// before or after it.
func containsWord(text, word string) bool {
	if word == "" {
		return false
	}
	offset := 0
	for {
		idx := strings.Index(text[offset:], word)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(word)

		before, _ := utf8.DecodeLastRuneInString(text[:start])
		after, _ := utf8.DecodeRuneInString(text[end:])
		if (start == 0 || !isWordRune(before)) && (end == len(text) || !isWordRune(after)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r)
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(v))
	}
	return out
}
