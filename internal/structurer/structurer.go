// Package structurer splits an oracle reply into labeled sections. Parsing is
// best effort: text that carries no known label lands in the intro, and the raw
// reply is always kept.
package structurer

import (
	"regexp"
	"strings"
)

// Section labels the prompt asks the oracle to use.
const (
	LabelSummary         = "支出模式总结"
	LabelSuggestions     = "储蓄建议"
	LabelGoalSuggestions = "目标建议"
)

// Kind tags a Section.
type Kind int

// Section kinds
const (
	KindUnstructured Kind = iota
	KindSummary
	KindSuggestions
	KindGoalSuggestions
)

func (k Kind) String() string {
	switch k {
	case KindSummary:
		return "summary"
	case KindSuggestions:
		return "suggestions"
	case KindGoalSuggestions:
		return "goalSuggestions"
	default:
		return "unstructured"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Section is one paragraph of the reply. Text holds the paragraph with its label
// removed; Items is filled for list kinds only.
type Section struct {
	Kind  Kind     `json:"kind"`
	Text  string   `json:"text"`
	Items []string `json:"items,omitempty"`
}

// StructuredAnalysis is the display form of an analysis reply.
type StructuredAnalysis struct {
	Intro           string   `json:"intro,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	Suggestions     []string `json:"suggestions"`
	GoalSuggestions []string `json:"goalSuggestions"`
	Raw             string   `json:"raw"`
}

// HasSections reports whether any labeled section was recognised.
func (s StructuredAnalysis) HasSections() bool {
	return s.Summary != "" || len(s.Suggestions) > 0 || len(s.GoalSuggestions) > 0
}

type label struct {
	kind   Kind
	prefix string
}

// Each label accepts an ASCII or a full-width colon.
var labels = []label{
	{KindSummary, LabelSummary + ":"},
	{KindSummary, LabelSummary + "："},
	{KindSuggestions, LabelSuggestions + ":"},
	{KindSuggestions, LabelSuggestions + "："},
	{KindGoalSuggestions, LabelGoalSuggestions + ":"},
	{KindGoalSuggestions, LabelGoalSuggestions + "："},
}

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)

// Sections splits raw into blank-line-delimited paragraphs and tags each one.
// Paragraphs are returned in reply order.
func Sections(raw string) []Section {
	text := strings.ReplaceAll(raw, "\r\n", "\n")

	var sections []Section
	for _, paragraph := range paragraphBreak.Split(text, -1) {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		sections = append(sections, classify(paragraph))
	}
	return sections
}

func classify(paragraph string) Section {
	for _, l := range labels {
		if !strings.HasPrefix(paragraph, l.prefix) {
			continue
		}
		body := strings.TrimSpace(strings.TrimPrefix(paragraph, l.prefix))
		section := Section{Kind: l.kind, Text: body}
		if l.kind == KindSuggestions || l.kind == KindGoalSuggestions {
			section.Items = splitItems(body)
		}
		return section
	}
	return Section{Kind: KindUnstructured, Text: paragraph}
}

func splitItems(body string) []string {
	items := []string{}
	for _, line := range strings.Split(body, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			items = append(items, line)
		}
	}
	return items
}

// Structure folds Sections into a StructuredAnalysis. Unlabeled paragraphs are
// joined into Intro with blank lines, as are repeated summary paragraphs; list
// sections accumulate their items. Paragraphs are trimmed and rejoined with a
// single blank line, so Intro is not byte-identical to a reply spaced any other
// way; Raw always holds the reply unchanged. It never fails.
func Structure(raw string) StructuredAnalysis {
	result := StructuredAnalysis{
		Suggestions:     []string{},
		GoalSuggestions: []string{},
		Raw:             raw,
	}

	var intro, summary []string
	for _, section := range Sections(raw) {
		switch section.Kind {
		case KindSummary:
			if section.Text != "" {
				summary = append(summary, section.Text)
			}
		case KindSuggestions:
			result.Suggestions = append(result.Suggestions, section.Items...)
		case KindGoalSuggestions:
			result.GoalSuggestions = append(result.GoalSuggestions, section.Items...)
		default:
			intro = append(intro, section.Text)
		}
	}

	result.Intro = strings.Join(intro, "\n\n")
	result.Summary = strings.Join(summary, "\n\n")
	return result
}
