// Package curriculum loads the exam curriculum statistics table and serves
// read-only, insertion-ordered lookups over it.
package curriculum

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Store is the immutable curriculum table: stage → subject → topic.
// Subjects and topics keep the order of the source document.
type Store struct {
	sections map[Stage][]Subject
}

// NewStore builds a Store from ordered sections. The slices are copied.
func NewStore(sections map[Stage][]Subject) *Store {
	s := &Store{sections: make(map[Stage][]Subject, len(sections))}
	for stage, subjects := range sections {
		cp := make([]Subject, len(subjects))
		for i, subj := range subjects {
			cp[i] = Subject{Name: subj.Name, Topics: append([]Topic(nil), subj.Topics...)}
		}
		s.sections[stage] = cp
	}
	return s
}

// Subjects returns the subjects of a stage in document order.
func (s *Store) Subjects(stage Stage) []Subject {
	return s.sections[stage]
}

// Subject looks a subject up by exact key first, then by case-insensitive
// (Turkish-aware) key equality.
func (s *Store) Subject(stage Stage, name string) (Subject, bool) {
	subjects := s.sections[stage]
	for _, subj := range subjects {
		if subj.Name == name {
			return subj, true
		}
	}
	folded := Fold(name)
	for _, subj := range subjects {
		if Fold(subj.Name) == folded {
			return subj, true
		}
	}
	return Subject{}, false
}

// TopicCount returns the number of topics across all stages.
func (s *Store) TopicCount() int {
	n := 0
	for _, subjects := range s.sections {
		for _, subj := range subjects {
			n += len(subj.Topics)
		}
	}
	return n
}

// dotlessI collapses the Turkish i variants so that ASCII-typed text
// ("ELEKTRIK", "PHYSICS") compares equal to its Turkish spelling.
var dotlessI = strings.NewReplacer("ı", "i", "\u0307", "")

// Fold lower-cases s with Turkish casing rules and then folds ı and a
// combining dot onto plain i.
func Fold(s string) string {
	return dotlessI.Replace(cases.Lower(language.Turkish).String(s))
}
