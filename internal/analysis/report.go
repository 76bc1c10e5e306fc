package analysis

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/p-n-ai/exam-coach/internal/curriculum"
)

// Total question counts used as the exam-weight denominator.
const (
	lgsQuestionCount = 50
	yksQuestionCount = 80
)

const ruleWidth = 60

var (
	heavyRule = strings.Repeat("=", ruleWidth)
	lightRule = strings.Repeat("-", ruleWidth)
)

// Stats summarizes a topic's yearly question counts.
type Stats struct {
	Average       float64
	Total         int
	WeightPercent float64
}

// ComputeStats derives Stats from history. ok is false when history is empty.
func ComputeStats(exam curriculum.ExamType, history []int) (stats Stats, ok bool) {
	if len(history) == 0 {
		return Stats{}, false
	}
	for _, n := range history {
		stats.Total += n
	}
	stats.Average = float64(stats.Total) / float64(len(history))

	denom := float64(yksQuestionCount)
	if exam == curriculum.ExamLGS {
		denom = lgsQuestionCount
	}
	stats.WeightPercent = stats.Average / denom * 100
	return stats, true
}

// ReportInput is everything the composer needs for one report.
type ReportInput struct {
	RawText string
	Match   TopicMatch
	Source  string // image file name
	Time    time.Time
}

// Composer renders coaching reports.
type Composer struct {
	catalog *Catalog
}

// NewComposer creates a Composer that draws advice from catalog.
func NewComposer(catalog *Catalog) *Composer {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Composer{catalog: catalog}
}

// Compose renders the report. Every section is always present; missing data
// is rendered as placeholder text.
func (c *Composer) Compose(in ReportInput) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}
	m := in.Match

	line(heavyRule)
	line("QUESTION ANALYSIS REPORT")
	line(heavyRule)
	line("Date: %s", in.Time.Format("2006-01-02 15:04:05"))
	line("Image: %s", in.Source)
	line("")

	line("1. DETECTED TOPIC")
	line(lightRule)
	line("Exam: %s", m.ExamType)
	line("Subject: %s", m.Subject)
	line("Topic: %s", m.TopicName)
	if m.Record == nil {
		line("(No match found in the curriculum database)")
	} else if len(m.Record.Subtopics) > 0 {
		line("Subtopics: %s", strings.Join(m.Record.Subtopics, ", "))
	}
	line("")

	line("2. EXAM WEIGHT")
	line(lightRule)
	var stats Stats
	ok := false
	if m.Record != nil {
		stats, ok = ComputeStats(m.ExamType, m.Record.YearlyHistory)
	}
	if ok {
		history := m.Record.YearlyHistory
		line("Questions on this topic between %d and %d:", curriculum.FirstHistoryYear, curriculum.FirstHistoryYear+len(history)-1)
		line("  - Average questions per year: %.1f", stats.Average)
		line("  - Total questions: %d", stats.Total)
		line("  - Yearly distribution: %s", formatHistory(history))
		line("  - Share of the exam: %%%.1f", stats.WeightPercent)
		if m.Record.Importance == curriculum.ImportanceCritical {
			line("  [!] IMPORTANCE: CRITICAL - questions from this topic appear every year!")
		}
	} else {
		line("No historical data available.")
	}
	line("")

	line("3. COACH ADVICE")
	line(lightRule)
	if m.Record != nil {
		if advice := c.catalog.Advice(m.Subject, m.TopicName, *m.Record); advice != "" {
			line("%s", advice)
		}
	} else {
		line("Topic-specific advice needs a match in the curriculum database.")
		line("General advice: read the question carefully and evaluate every option.")
	}
	line("")

	line(heavyRule)
	line("AI ANALYSIS OUTPUT:")
	line(lightRule)
	line("%s", in.RawText)
	b.WriteString(heavyRule)

	return b.String()
}

func formatHistory(history []int) string {
	parts := make([]string, len(history))
	for i, n := range history {
		parts[i] = strconv.Itoa(n)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
