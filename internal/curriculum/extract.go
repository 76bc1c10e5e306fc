package curriculum

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LGSSubjects are the LGS subject headings, in exam booklet order.
var LGSSubjects = []string{
	"Türkçe",
	"Matematik",
	"Fen Bilimleri",
	"İnkılap Tarihi",
	"Din Kültürü",
	"İngilizce",
}

// YKSSubjects are the subject headings recognized inside the YKS guide.
var YKSSubjects = []string{
	"Türkçe",
	"Matematik",
	"Geometri",
	"Fizik",
	"Kimya",
	"Biyoloji",
	"Tarih",
	"Coğrafya",
	"Felsefe",
	"Din Kültürü",
	"Edebiyat",
}

// maxHeadingLen bounds how long a line can be and still count as a subject heading.
const maxHeadingLen = 50

// ExtractPDFText returns the plain text of a PDF file.
func ExtractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text %s: %w", path, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text %s: %w", path, err)
	}
	return buf.String(), nil
}

// Skeleton is a curriculum document with subject headings and no topics.
// It is a starting point for hand curation, not a finished table.
type Skeleton struct {
	LGS map[string]map[string]any            `json:"LGS"`
	YKS map[string]map[string]map[string]any `json:"YKS"`

	// Unseen lists LGS subjects whose heading never appeared in the LGS text.
	Unseen []string `json:"-"`
}

// BuildSkeleton derives a skeleton document from the text of the LGS and YKS
// guides. All LGS subjects are always present; YKS subjects are added under
// TYT or AYT depending on which section header was seen last.
func BuildSkeleton(lgsText, yksText string) Skeleton {
	sk := Skeleton{
		LGS: make(map[string]map[string]any, len(LGSSubjects)),
		YKS: map[string]map[string]map[string]any{
			string(StageTYT): {},
			string(StageAYT): {},
		},
	}
	lgsHeadings := headings(lgsText)
	for _, s := range LGSSubjects {
		sk.LGS[s] = map[string]any{}
		if !containsHeading(lgsHeadings, s) {
			sk.Unseen = append(sk.Unseen, s)
		}
	}

	var current Stage
	for _, line := range strings.Split(yksText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		folded := Fold(line)
		switch {
		case strings.Contains(folded, "tyt") || strings.Contains(folded, "temel yeterlilik"):
			current = StageTYT
			continue
		case strings.Contains(folded, "ayt") || strings.Contains(folded, "alan yeterlilik"):
			current = StageAYT
			continue
		}
		if current == "" || len([]rune(line)) >= maxHeadingLen {
			continue
		}
		for _, s := range YKSSubjects {
			if strings.Contains(folded, Fold(s)) {
				sk.YKS[string(current)][s] = map[string]any{}
				break
			}
		}
	}
	return sk
}

// headings returns the folded short lines of text, the only lines that can be subject headings.
func headings(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && len([]rune(line)) < maxHeadingLen {
			out = append(out, Fold(line))
		}
	}
	return out
}

func containsHeading(lines []string, subject string) bool {
	folded := Fold(subject)
	for _, l := range lines {
		if strings.Contains(l, folded) {
			return true
		}
	}
	return false
}

// JSON renders the skeleton as an indented curriculum document.
func (s Skeleton) JSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
