package curriculum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// rawRecord accepts both the English keys and the keys written by the
// curriculum extraction script (alt_konular, history).
type rawRecord struct {
	Subtopics          []string `json:"subtopics" yaml:"subtopics"`
	AltKonular         []string `json:"alt_konular" yaml:"alt_konular"`
	YearlyHistory      []int    `json:"yearly_history" yaml:"yearly_history"`
	YearlyHistoryCamel []int    `json:"yearlyHistory" yaml:"yearlyHistory"`
	History            []int    `json:"history" yaml:"history"`
	Importance         string   `json:"importance" yaml:"importance"`
}

func (r rawRecord) record() TopicRecord {
	rec := TopicRecord{Importance: ParseImportance(r.Importance)}
	switch {
	case len(r.Subtopics) > 0:
		rec.Subtopics = r.Subtopics
	case len(r.AltKonular) > 0:
		rec.Subtopics = r.AltKonular
	}
	switch {
	case len(r.YearlyHistory) > 0:
		rec.YearlyHistory = r.YearlyHistory
	case len(r.YearlyHistoryCamel) > 0:
		rec.YearlyHistory = r.YearlyHistoryCamel
	case len(r.History) > 0:
		rec.YearlyHistory = r.History
	}
	return rec
}

// Load reads the curriculum document at path. JSON is the primary format;
// files ending in .yaml or .yml are read as YAML with the same shape.
// Any read, schema or decode failure is returned; callers treat it as fatal.
func Load(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("curriculum path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading curriculum: %w", err)
	}

	var store *Store
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		store, err = ParseYAML(data)
	default:
		store, err = ParseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("loading curriculum %s: %w", path, err)
	}

	slog.Info("curriculum loaded", "path", path, "topics", store.TopicCount())
	return store, nil
}

// ParseJSON validates and decodes a JSON curriculum document, keeping the
// key order of every object.
func ParseJSON(data []byte) (*Store, error) {
	if err := validate(gojsonschema.NewBytesLoader(data)); err != nil {
		return nil, err
	}

	sections := make(map[Stage][]Subject)
	dec := json.NewDecoder(bytes.NewReader(data))
	err := readObject(dec, func(key string) error {
		switch key {
		case "LGS":
			subjects, err := readSubjects(dec)
			if err != nil {
				return fmt.Errorf("LGS: %w", err)
			}
			sections[StageLGS] = subjects
			return nil
		case "YKS":
			return readObject(dec, func(sub string) error {
				stage := Stage(sub)
				if stage != StageTYT && stage != StageAYT {
					return skipValue(dec)
				}
				subjects, err := readSubjects(dec)
				if err != nil {
					return fmt.Errorf("YKS.%s: %w", sub, err)
				}
				sections[stage] = subjects
				return nil
			})
		default:
			return skipValue(dec)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &Store{sections: sections}, nil
}

func readSubjects(dec *json.Decoder) ([]Subject, error) {
	var subjects []Subject
	err := readObject(dec, func(name string) error {
		subj := Subject{Name: name}
		err := readObject(dec, func(topic string) error {
			var raw rawRecord
			if err := dec.Decode(&raw); err != nil {
				return fmt.Errorf("topic %q: %w", topic, err)
			}
			subj.Topics = append(subj.Topics, Topic{Name: topic, Record: raw.record()})
			return nil
		})
		if err != nil {
			return fmt.Errorf("subject %q: %w", name, err)
		}
		subjects = append(subjects, subj)
		return nil
	})
	return subjects, err
}

// readObject walks one JSON object, calling fn for every key. fn must
// consume the value that follows the key.
func readObject(dec *json.Decoder, fn func(key string) error) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := fn(key); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}

func skipValue(dec *json.Decoder) error {
	var discard json.RawMessage
	return dec.Decode(&discard)
}

// ParseYAML validates and decodes a YAML curriculum document. Mapping order
// is taken from the YAML node tree.
func ParseYAML(data []byte) (*Store, error) {
	var generic map[string]any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := validate(gojsonschema.NewGoLoader(generic)); err != nil {
		return nil, err
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
	}

	sections := make(map[Stage][]Subject)
	err := eachPair(root.Content[0], func(key string, val *yaml.Node) error {
		switch key {
		case "LGS":
			subjects, err := nodeSubjects(val)
			if err != nil {
				return fmt.Errorf("LGS: %w", err)
			}
			sections[StageLGS] = subjects
		case "YKS":
			return eachPair(val, func(sub string, subVal *yaml.Node) error {
				stage := Stage(sub)
				if stage != StageTYT && stage != StageAYT {
					return nil
				}
				subjects, err := nodeSubjects(subVal)
				if err != nil {
					return fmt.Errorf("YKS.%s: %w", sub, err)
				}
				sections[stage] = subjects
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return &Store{sections: sections}, nil
}

func nodeSubjects(node *yaml.Node) ([]Subject, error) {
	var subjects []Subject
	err := eachPair(node, func(name string, topics *yaml.Node) error {
		subj := Subject{Name: name}
		err := eachPair(topics, func(topic string, rec *yaml.Node) error {
			var raw rawRecord
			if err := rec.Decode(&raw); err != nil {
				return fmt.Errorf("topic %q: %w", topic, err)
			}
			subj.Topics = append(subj.Topics, Topic{Name: topic, Record: raw.record()})
			return nil
		})
		if err != nil {
			return fmt.Errorf("subject %q: %w", name, err)
		}
		subjects = append(subjects, subj)
		return nil
	})
	return subjects, err
}

func eachPair(node *yaml.Node, fn func(key string, val *yaml.Node) error) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}
