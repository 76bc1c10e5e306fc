package curriculum

import "strings"

// Unknown is the display value for any classification field the AI reply did not supply.
const Unknown = "Unknown"

// ExamType is the exam a question was classified under.
type ExamType string

const (
	ExamLGS     ExamType = "LGS"
	ExamYKSTYT  ExamType = "YKS-TYT"
	ExamYKSAYT  ExamType = "YKS-AYT"
	ExamUnknown ExamType = Unknown
)

// Stage returns the curriculum section holding topics for this exam type.
func (e ExamType) Stage() (Stage, bool) {
	switch e {
	case ExamLGS:
		return StageLGS, true
	case ExamYKSTYT:
		return StageTYT, true
	case ExamYKSAYT:
		return StageAYT, true
	default:
		return "", false
	}
}

// Stage identifies one subject map inside the curriculum document.
// LGS is a single-stage exam; YKS is split into TYT and AYT.
type Stage string

const (
	StageLGS Stage = "LGS"
	StageTYT Stage = "TYT"
	StageAYT Stage = "AYT"
)

// Importance marks how often a topic appears in past exams.
type Importance int

const (
	ImportanceNormal Importance = iota
	ImportanceCritical
)

func (i Importance) String() string {
	if i == ImportanceCritical {
		return "Critical"
	}
	return "Normal"
}

// ParseImportance maps a curriculum importance tag to an Importance.
// Both the English and the Turkish ("Kritik") spelling mark a topic as critical.
func ParseImportance(s string) Importance {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical", "kritik":
		return ImportanceCritical
	default:
		return ImportanceNormal
	}
}

// TopicRecord holds the statistics recorded for one curriculum topic.
type TopicRecord struct {
	Subtopics     []string
	YearlyHistory []int // question counts per year, starting at FirstHistoryYear
	Importance    Importance
}

// FirstHistoryYear is the exam year of YearlyHistory[0].
const FirstHistoryYear = 2018

// Topic is a named record in insertion order.
type Topic struct {
	Name   string
	Record TopicRecord
}

// Subject is a named, ordered list of topics.
type Subject struct {
	Name   string
	Topics []Topic
}
