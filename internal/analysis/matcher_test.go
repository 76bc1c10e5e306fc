package analysis_test

import (
	"reflect"
	"testing"

	"github.com/p-n-ai/exam-coach/internal/analysis"
	"github.com/p-n-ai/exam-coach/internal/curriculum"
)

func testStore() *curriculum.Store {
	return curriculum.NewStore(map[curriculum.Stage][]curriculum.Subject{
		curriculum.StageLGS: {
			{Name: "Mathematics", Topics: []curriculum.Topic{
				{Name: "Exponents, Roots", Record: curriculum.TopicRecord{
					Subtopics:     []string{"Powers", "Square roots"},
					YearlyHistory: []int{2, 2, 1, 3, 2, 2, 1},
					Importance:    curriculum.ImportanceCritical,
				}},
				{Name: "Geometry"},
			}},
			{Name: "Fen Bilimleri", Topics: []curriculum.Topic{
				{Name: "Kuvvet", Record: curriculum.TopicRecord{YearlyHistory: []int{1}}},
				{Name: "Kuvvet ve Hareket", Record: curriculum.TopicRecord{YearlyHistory: []int{2}}},
				{Name: "Basınç"},
			}},
		},
		curriculum.StageTYT: {
			{Name: "Fizik", Topics: []curriculum.Topic{
				{Name: "Elektrik ve Manyetizma"},
			}},
		},
		curriculum.StageAYT: {
			{Name: "Biyoloji", Topics: []curriculum.Topic{
				{Name: "Genetik"},
			}},
		},
	})
}

func TestMatcher_Match(t *testing.T) {
	matcher := analysis.NewMatcher(testStore())

	tests := []struct {
		name      string
		in        analysis.Classification
		wantTopic string
		wantMatch bool
	}{
		{
			name:      "rephrased topic",
			in:        analysis.Classification{ExamType: curriculum.ExamLGS, Subject: "Mathematics", TopicRaw: "Exponents and Roots"},
			wantTopic: "Exponents, Roots",
			wantMatch: true,
		},
		{
			name:      "query contained in candidate",
			in:        analysis.Classification{ExamType: curriculum.ExamYKSTYT, Subject: "Fizik", TopicRaw: "elektrik"},
			wantTopic: "Elektrik ve Manyetizma",
			wantMatch: true,
		},
		{
			name:      "candidate contained in query",
			in:        analysis.Classification{ExamType: curriculum.ExamLGS, Subject: "Mathematics", TopicRaw: "Geometry - Triangles"},
			wantTopic: "Geometry",
			wantMatch: true,
		},
		{
			name:      "turkish case folding",
			in:        analysis.Classification{ExamType: curriculum.ExamLGS, Subject: "Fen Bilimleri", TopicRaw: "BASINÇ"},
			wantTopic: "Basınç",
			wantMatch: true,
		},
		{
			name:      "AYT uses its own section",
			in:        analysis.Classification{ExamType: curriculum.ExamYKSAYT, Subject: "Biyoloji", TopicRaw: "Genetik Çaprazlama"},
			wantTopic: "Genetik",
			wantMatch: true,
		},
		{
			name:      "subject in the wrong stage",
			in:        analysis.Classification{ExamType: curriculum.ExamYKSTYT, Subject: "Biyoloji", TopicRaw: "Genetik"},
			wantTopic: "Genetik",
			wantMatch: false,
		},
		{
			name:      "no topic matches",
			in:        analysis.Classification{ExamType: curriculum.ExamLGS, Subject: "Mathematics", TopicRaw: "Probability"},
			wantTopic: "Probability",
			wantMatch: false,
		},
		{
			name:      "unknown topic",
			in:        analysis.Classification{ExamType: curriculum.ExamLGS, Subject: "Mathematics", TopicRaw: curriculum.Unknown},
			wantTopic: curriculum.Unknown,
			wantMatch: false,
		},
		{
			name:      "unknown exam type",
			in:        analysis.Classification{ExamType: curriculum.ExamUnknown, Subject: "Mathematics", TopicRaw: "Geometry"},
			wantTopic: "Geometry",
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matcher.Match(tt.in)
			if got.Matched() != tt.wantMatch {
				t.Fatalf("Matched() = %v, want %v", got.Matched(), tt.wantMatch)
			}
			if got.TopicName != tt.wantTopic {
				t.Errorf("TopicName = %q, want %q", got.TopicName, tt.wantTopic)
			}
			if got.ExamType != tt.in.ExamType {
				t.Errorf("ExamType = %q, want %q", got.ExamType, tt.in.ExamType)
			}
		})
	}
}

func TestMatcher_UnknownSubject(t *testing.T) {
	matcher := analysis.NewMatcher(testStore())

	in := analysis.Classification{ExamType: curriculum.ExamLGS, Subject: "Astronomy", TopicRaw: "Planets"}
	got := matcher.Match(in)

	if got.Record != nil {
		t.Fatalf("Record = %+v, want nil for unknown subject", got.Record)
	}
	if got.Subject != "Astronomy" || got.TopicName != "Planets" {
		t.Errorf("miss should pass fields through, got %+v", got)
	}
}

func TestMatcher_FirstMatchWins(t *testing.T) {
	matcher := analysis.NewMatcher(testStore())

	// "Kuvvet" and "Kuvvet ve Hareket" both contain the query.
	got := matcher.Match(analysis.Classification{
		ExamType: curriculum.ExamLGS,
		Subject:  "Fen Bilimleri",
		TopicRaw: "Kuvvet",
	})

	if got.TopicName != "Kuvvet" {
		t.Errorf("TopicName = %q, want the earlier topic %q", got.TopicName, "Kuvvet")
	}
	if got.Record == nil || got.Record.YearlyHistory[0] != 1 {
		t.Errorf("Record = %+v, want the earlier topic's record", got.Record)
	}
}

func TestMatcher_Idempotent(t *testing.T) {
	matcher := analysis.NewMatcher(testStore())
	in := analysis.Classification{ExamType: curriculum.ExamLGS, Subject: "Mathematics", TopicRaw: "Exponents and Roots"}

	first := matcher.Match(in)
	second := matcher.Match(in)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Match() not idempotent: %+v vs %+v", first, second)
	}
}

func TestMatcher_SubjectCaseInsensitive(t *testing.T) {
	matcher := analysis.NewMatcher(testStore())

	got := matcher.Match(analysis.Classification{ExamType: curriculum.ExamLGS, Subject: "mathematics", TopicRaw: "geometry"})
	if !got.Matched() {
		t.Fatal("expected match with lower-cased subject")
	}
	if got.Subject != "Mathematics" {
		t.Errorf("Subject = %q, want curriculum key %q", got.Subject, "Mathematics")
	}
}

func TestMatcher_UppercaseASCII(t *testing.T) {
	store := curriculum.NewStore(map[curriculum.Stage][]curriculum.Subject{
		curriculum.StageTYT: {
			{Name: "Physics", Topics: []curriculum.Topic{{Name: "Electricity"}}},
			{Name: "Fizik", Topics: []curriculum.Topic{{Name: "Elektrik ve Manyetizma"}}},
		},
	})
	matcher := analysis.NewMatcher(store)

	tests := []struct {
		name      string
		subject   string
		topic     string
		wantTopic string
	}{
		{"upper topic", "Physics", "ELECTRICITY", "Electricity"},
		{"upper subject and topic", "PHYSICS", "ELECTRICITY", "Electricity"},
		{"ascii typed turkish", "FIZIK", "ELEKTRIK", "Elektrik ve Manyetizma"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matcher.Match(analysis.Classification{ExamType: curriculum.ExamYKSTYT, Subject: tt.subject, TopicRaw: tt.topic})
			if !got.Matched() {
				t.Fatalf("Match(%q, %q) did not match", tt.subject, tt.topic)
			}
			if got.TopicName != tt.wantTopic {
				t.Errorf("TopicName = %q, want %q", got.TopicName, tt.wantTopic)
			}
		})
	}
}
