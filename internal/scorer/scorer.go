// Package scorer implements the keyword-matching resume scorer. It is a pure
// function of its two inputs; pacing and gating live elsewhere.
package scorer

import (
	"fmt"
	"strings"

	"github.com/resumeai/enhancer/internal/model"
)

// EnhancementCount is the fixed number of suggestions in every result.
const EnhancementCount = 4

// SkillPlaceholder is replaced in enhancement templates by the first weakness.
const SkillPlaceholder = "{skill}"

// DefaultFallbackSkill fills SkillPlaceholder when the resume has no weaknesses.
const DefaultFallbackSkill = "something impressive"

// DefaultKeywords is the built-in KeywordSet, in display order.
var DefaultKeywords = []string{
	"JavaScript",
	"React",
	"Node.js",
	"AI",
	"Machine Learning",
	"TypeScript",
	"Python",
	"AWS",
}

// DefaultEnhancements are the built-in suggestion templates.
var DefaultEnhancements = []string{
	"Claim you led a small team on a project (it was just you, but hey, self-leadership counts)",
	"Say you're an expert in " + SkillPlaceholder,
	"Add 'proficient in AI-powered resume enhancement' to your skills",
	"Mention you can juggle while coding (multitasking at its finest!)",
}

// Scorer matches free text against a fixed keyword table.
// Matching is case-insensitive substring containment, so "AI" also matches "maintain".
type Scorer struct {
	keywords     []string
	lowered      []string
	enhancements []string
	fallback     string
}

// New builds a Scorer from the given tables. keywords must be non-empty and
// enhancements must hold exactly EnhancementCount templates.
func New(keywords, enhancements []string, fallback string) (*Scorer, error) {
	if len(keywords) == 0 {
		return nil, fmt.Errorf("scorer: at least one keyword is required")
	}
	if len(enhancements) != EnhancementCount {
		return nil, fmt.Errorf("scorer: need exactly %d enhancement templates, got %d", EnhancementCount, len(enhancements))
	}
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			return nil, fmt.Errorf("scorer: keyword %d is blank", i)
		}
		lowered[i] = strings.ToLower(kw)
	}
	if fallback == "" {
		fallback = DefaultFallbackSkill
	}
	return &Scorer{
		keywords:     append([]string(nil), keywords...),
		lowered:      lowered,
		enhancements: append([]string(nil), enhancements...),
		fallback:     fallback,
	}, nil
}

var defaultScorer = mustDefault()

func mustDefault() *Scorer {
	s, err := New(DefaultKeywords, DefaultEnhancements, DefaultFallbackSkill)
	if err != nil {
		panic(err)
	}
	return s
}

// Default returns the scorer built from the default tables.
func Default() *Scorer { return defaultScorer }

// Analyze scores resume against jobDescription with the default tables.
func Analyze(resume, jobDescription string) model.AnalysisResult {
	return defaultScorer.Analyze(resume, jobDescription)
}

// Keywords returns a copy of the keyword table.
func (s *Scorer) Keywords() []string {
	return append([]string(nil), s.keywords...)
}

// Analyze computes the match result. It never returns a non-finite percentage:
// when the job description contains no tracked keyword the percentage is 0.
func (s *Scorer) Analyze(resume, jobDescription string) model.AnalysisResult {
	resumeLower := strings.ToLower(resume)
	jobLower := strings.ToLower(jobDescription)

	strengths := make([]string, 0, len(s.keywords))
	weaknesses := make([]string, 0, len(s.keywords))
	jobHits := 0
	for i, kw := range s.lowered {
		inResume := strings.Contains(resumeLower, kw)
		inJob := strings.Contains(jobLower, kw)
		if inJob {
			jobHits++
		}
		switch {
		case inResume:
			strengths = append(strengths, s.keywords[i])
		case inJob:
			weaknesses = append(weaknesses, s.keywords[i])
		}
	}

	skill := s.fallback
	if len(weaknesses) > 0 {
		skill = weaknesses[0]
	}
	enhancements := make([]string, len(s.enhancements))
	for i, tmpl := range s.enhancements {
		enhancements[i] = strings.ReplaceAll(tmpl, SkillPlaceholder, skill)
	}

	return model.AnalysisResult{
		MatchPercentage: Percentage(len(strengths), jobHits),
		Strengths:       strengths,
		Weaknesses:      weaknesses,
		Enhancements:    enhancements,
		ResumeHits:      len(strengths),
		JobHits:         jobHits,
	}
}

// Percentage returns round(resumeHits/jobHits*100), rounding halves up.
// A zero denominator yields 0.
func Percentage(resumeHits, jobHits int) int {
	if jobHits <= 0 {
		return 0
	}
	return (resumeHits*200 + jobHits) / (2 * jobHits)
}
