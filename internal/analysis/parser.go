// Package analysis turns an AI classification reply into a curriculum match
// and a coaching report.
package analysis

import (
	"strings"

	"github.com/p-n-ai/exam-coach/internal/curriculum"
)

// Classification is the exam type, subject and topic read from an AI reply.
// Fields the reply did not provide hold curriculum.Unknown.
type Classification struct {
	ExamType curriculum.ExamType
	Subject  string
	TopicRaw string
}

// Label tokens as they appear in the prompt template, in English and Turkish.
var (
	examTypeLabels = []string{"EXAM_TYPE", "Exam Type", "SINAV_TİPİ", "Sınav Tipi"}
	subjectLabels  = []string{"SUBJECT", "Subject", "DERS", "Ders"}
	topicLabels    = []string{"TOPIC", "Topic", "KONU", "Konu"}
)

// ParseResponse extracts a Classification from free text. Each line is tested
// for an exam-type label, then a subject label, then a topic label; the first
// that applies claims the line. The first labeled value of each field wins.
// ParseResponse never fails: anything it cannot find is Unknown.
func ParseResponse(text string) Classification {
	c := Classification{
		ExamType: curriculum.ExamUnknown,
		Subject:  curriculum.Unknown,
		TopicRaw: curriculum.Unknown,
	}
	var haveExam, haveSubject, haveTopic bool

	for _, line := range strings.Split(text, "\n") {
		switch {
		case containsAny(line, examTypeLabels):
			if haveExam {
				continue
			}
			if exam, ok := examTypeIn(line); ok {
				c.ExamType = exam
				haveExam = true
			}
		case containsAny(line, subjectLabels):
			if haveSubject {
				continue
			}
			if v := valueAfterColon(line); v != "" {
				c.Subject = v
				haveSubject = true
			}
		case containsAny(line, topicLabels):
			if haveTopic {
				continue
			}
			if v := valueAfterColon(line); v != "" {
				c.TopicRaw = v
				haveTopic = true
			}
		}
	}
	return c
}

// examTypeIn resolves the exam markers on a line; LGS beats TYT beats AYT.
func examTypeIn(line string) (curriculum.ExamType, bool) {
	switch {
	case strings.Contains(line, "LGS"):
		return curriculum.ExamLGS, true
	case strings.Contains(line, "TYT"):
		return curriculum.ExamYKSTYT, true
	case strings.Contains(line, "AYT"):
		return curriculum.ExamYKSAYT, true
	default:
		return curriculum.ExamUnknown, false
	}
}

// valueAfterColon returns the text after the last colon, without surrounding
// whitespace or markdown emphasis. Lines without a colon yield "".
func valueAfterColon(line string) string {
	i := strings.LastIndex(line, ":")
	if i < 0 {
		return ""
	}
	v := strings.TrimSpace(line[i+1:])
	v = strings.Trim(v, "*`")
	return strings.TrimSpace(v)
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
