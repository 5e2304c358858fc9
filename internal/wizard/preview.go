package wizard

import "github.com/resumeai/enhancer/internal/model"

// Placeholder texts for the hidden part of each preview list.
const (
	LockedStrengths    = "Unlock more strengths with Premium!"
	LockedWeaknesses   = "Unlock more insights with Premium!"
	LockedEnhancements = "Unlock more detailed enhancements with Premium!"
)

// How much of each list a preview reveals.
const (
	previewStrengths    = 2
	previewWeaknesses   = 1
	previewEnhancements = 2
)

// DefaultRockstarThreshold is the percentage above which the verdict is upbeat.
const DefaultRockstarThreshold = 70

// Item is one line of a preview list. Locked items stand in for hidden content.
type Item struct {
	Text   string `json:"text"`
	Locked bool   `json:"locked,omitempty"`
}

// ResultsView is the truncated, presentation-ready form of an AnalysisResult.
type ResultsView struct {
	MatchPercentage int    `json:"match_percentage"`
	Verdict         string `json:"verdict"`
	NoJobKeywords   bool   `json:"no_job_keywords,omitempty"`
	Strengths       []Item `json:"strengths"`
	Weaknesses      []Item `json:"weaknesses"`
	Enhancements    []Item `json:"enhancements"`
}

// Presenter turns results into previews.
type Presenter struct {
	RockstarThreshold int
}

// Preview truncates r with the default threshold.
func Preview(r model.AnalysisResult) ResultsView {
	return Presenter{RockstarThreshold: DefaultRockstarThreshold}.Preview(r)
}

// Preview reveals the first two strengths, the first weakness and the first two
// enhancements. Weaknesses and enhancements always end with a locked item;
// strengths only do when some are hidden.
func (p Presenter) Preview(r model.AnalysisResult) ResultsView {
	v := ResultsView{
		MatchPercentage: r.MatchPercentage,
		Verdict:         Verdict(r.MatchPercentage, p.RockstarThreshold),
		NoJobKeywords:   r.JobHits == 0,
		Strengths:       reveal(r.Strengths, previewStrengths),
		Weaknesses:      reveal(r.Weaknesses, previewWeaknesses),
		Enhancements:    reveal(r.Enhancements, previewEnhancements),
	}
	if len(r.Strengths) > previewStrengths {
		v.Strengths = append(v.Strengths, Item{Text: LockedStrengths, Locked: true})
	}
	v.Weaknesses = append(v.Weaknesses, Item{Text: LockedWeaknesses, Locked: true})
	v.Enhancements = append(v.Enhancements, Item{Text: LockedEnhancements, Locked: true})
	return v
}

// Verdict is the one-line reaction shown next to the score.
func Verdict(pct, threshold int) string {
	if pct > threshold {
		return "You're a rockstar! 🎸"
	}
	return "Let's polish that resume! 💎"
}

func reveal(list []string, n int) []Item {
	n = min(n, len(list))
	items := make([]Item, 0, n+1)
	for _, s := range list[:n] {
		items = append(items, Item{Text: s})
	}
	return items
}
