package analysis

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/exam-coach/internal/curriculum"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// Catalog is the ordered (subject, keyword) → tip table used for coach advice.
type Catalog struct {
	Branches []Branch `yaml:"branches"`
}

// Branch groups the rules for one subject and its aliases.
type Branch struct {
	Subjects []string `yaml:"subjects"`
	Rules    []Rule   `yaml:"rules"`
}

// Rule emits Tip when any keyword is contained in the topic name.
type Rule struct {
	Keywords []string `yaml:"keywords"`
	Tip      []string `yaml:"tip"`
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded advice catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading advice catalog: %w", err)
	}
	c, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("parsing advice catalog %s: %w", path, err)
	}
	return c, nil
}

// ParseCatalog decodes and checks a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	for i, b := range c.Branches {
		if len(b.Subjects) == 0 {
			return nil, fmt.Errorf("branch %d has no subjects", i)
		}
		for j, r := range b.Rules {
			if len(r.Keywords) == 0 || len(r.Tip) == 0 {
				return nil, fmt.Errorf("branch %d rule %d needs keywords and tip", i, j)
			}
		}
	}
	return &c, nil
}

// branchFor picks the branch for subject: exact name first, then
// case-insensitive name.
func (c *Catalog) branchFor(subject string) (Branch, bool) {
	for _, b := range c.Branches {
		for _, s := range b.Subjects {
			if s == subject {
				return b, true
			}
		}
	}
	folded := curriculum.Fold(subject)
	for _, b := range c.Branches {
		for _, s := range b.Subjects {
			if curriculum.Fold(s) == folded {
				return b, true
			}
		}
	}
	return Branch{}, false
}

// Tip returns the tip lines for subject and topic, or nil.
func (c *Catalog) Tip(subject, topic string) []string {
	b, ok := c.branchFor(subject)
	if !ok {
		return nil
	}
	folded := curriculum.Fold(topic)
	for _, r := range b.Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(folded, curriculum.Fold(kw)) {
				return r.Tip
			}
		}
	}
	return nil
}

// Advice builds the coach advice block: a critical-topic warning when the
// record is marked critical, the matching catalog tip, then the subtopics.
// The result may be empty.
func (c *Catalog) Advice(subject, topic string, rec curriculum.TopicRecord) string {
	var lines []string

	if rec.Importance == curriculum.ImportanceCritical {
		lines = append(lines,
			fmt.Sprintf("[!] %s is a CRITICAL topic. Questions from it appear every year.", topic),
			"    You must learn this topic well!",
		)
	}

	lines = append(lines, c.Tip(subject, topic)...)

	if len(rec.Subtopics) > 0 {
		lines = append(lines, "", "Subtopics of this topic:")
		for _, s := range rec.Subtopics {
			lines = append(lines, "   - "+s)
		}
	}

	return strings.Join(lines, "\n")
}
