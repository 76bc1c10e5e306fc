package analysis

import (
	"strings"
	"unicode"

	"github.com/p-n-ai/exam-coach/internal/curriculum"
)

// TopicMatch is a Classification resolved against the curriculum.
// Record is nil when no curriculum topic matched; that is an expected outcome.
type TopicMatch struct {
	ExamType  curriculum.ExamType
	Subject   string
	TopicName string
	Record    *curriculum.TopicRecord
}

// Matched reports whether a curriculum record was found.
func (m TopicMatch) Matched() bool {
	return m.Record != nil
}

// Matcher resolves classifications against one curriculum store.
type Matcher struct {
	store *curriculum.Store
}

// NewMatcher creates a Matcher over store.
func NewMatcher(store *curriculum.Store) *Matcher {
	return &Matcher{store: store}
}

// Match finds the first topic, in curriculum order, whose name contains the
// parsed topic or is contained by it, after normalizeTopic. It is first-match,
// not best-match: overlapping names such as "Kuvvet" and "Kuvvet ve Hareket"
// resolve to whichever comes first in the document.
func (m *Matcher) Match(c Classification) TopicMatch {
	miss := TopicMatch{
		ExamType:  c.ExamType,
		Subject:   c.Subject,
		TopicName: c.TopicRaw,
	}

	stage, ok := c.ExamType.Stage()
	if !ok || c.Subject == curriculum.Unknown {
		return miss
	}
	subj, ok := m.store.Subject(stage, c.Subject)
	if !ok {
		return miss
	}
	if c.TopicRaw == curriculum.Unknown || strings.TrimSpace(c.TopicRaw) == "" {
		return miss
	}

	query := normalizeTopic(c.TopicRaw)
	if query == "" {
		return miss
	}
	for _, topic := range subj.Topics {
		name := normalizeTopic(topic.Name)
		if name == "" {
			continue
		}
		if strings.Contains(name, query) || strings.Contains(query, name) {
			rec := topic.Record
			return TopicMatch{
				ExamType:  c.ExamType,
				Subject:   subj.Name,
				TopicName: topic.Name,
				Record:    &rec,
			}
		}
	}
	return miss
}

// connectors are dropped before comparing topic names so that
// "Exponents and Roots" and "Exponents, Roots" compare equal.
var connectors = map[string]bool{
	"and": true, "or": true, "ve": true, "ile": true, "veya": true,
}

// normalizeTopic folds case, turns punctuation into spaces and removes
// connector words.
func normalizeTopic(s string) string {
	fields := strings.FieldsFunc(curriculum.Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	kept := fields[:0]
	for _, f := range fields {
		if !connectors[f] {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}
