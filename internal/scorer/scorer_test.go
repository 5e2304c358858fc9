package scorer

import (
	"reflect"
	"strings"
	"testing"
)

func TestAnalyze_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		resume         string
		job            string
		wantStrengths  []string
		wantWeaknesses []string
		wantPct        int
		wantJobHits    int
	}{
		{
			name:           "partial match",
			resume:         "I know JavaScript and React",
			job:            "Looking for JavaScript, React, Node.js",
			wantStrengths:  []string{"JavaScript", "React"},
			wantWeaknesses: []string{"Node.js"},
			wantPct:        67,
			wantJobHits:    3,
		},
		{
			name:           "no tracked keywords in job description",
			resume:         "AI expert",
			job:            "no matching terms here",
			wantStrengths:  []string{"AI"},
			wantWeaknesses: []string{},
			wantPct:        0,
			wantJobHits:    0,
		},
		{
			name:           "case insensitive",
			resume:         "PYTHON and aws",
			job:            "python, AWS, typescript",
			wantStrengths:  []string{"Python", "AWS"},
			wantWeaknesses: []string{"TypeScript"},
			wantPct:        67,
			wantJobHits:    3,
		},
		{
			name:           "resume covers more than the job asks",
			resume:         "JavaScript React Python",
			job:            "React",
			wantStrengths:  []string{"JavaScript", "React", "Python"},
			wantWeaknesses: []string{},
			wantPct:        300,
			wantJobHits:    1,
		},
		{
			name:           "substring match inside words",
			resume:         "I maintain things",
			job:            "AI role",
			wantStrengths:  []string{"AI"},
			wantWeaknesses: []string{},
			wantPct:        100,
			wantJobHits:    1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Analyze(tt.resume, tt.job)
			if !reflect.DeepEqual(got.Strengths, tt.wantStrengths) {
				t.Errorf("Strengths = %v, want %v", got.Strengths, tt.wantStrengths)
			}
			if !reflect.DeepEqual(got.Weaknesses, tt.wantWeaknesses) {
				t.Errorf("Weaknesses = %v, want %v", got.Weaknesses, tt.wantWeaknesses)
			}
			if got.MatchPercentage != tt.wantPct {
				t.Errorf("MatchPercentage = %d, want %d", got.MatchPercentage, tt.wantPct)
			}
			if got.JobHits != tt.wantJobHits {
				t.Errorf("JobHits = %d, want %d", got.JobHits, tt.wantJobHits)
			}
			if len(got.Enhancements) != EnhancementCount {
				t.Errorf("len(Enhancements) = %d, want %d", len(got.Enhancements), EnhancementCount)
			}
		})
	}
}

func TestAnalyze_KeywordMembership(t *testing.T) {
	inputs := []struct{ resume, job string }{
		{"", ""},
		{"Machine Learning with Python", "AWS, Python, machine learning, React"},
		{"node.js typescript", "JavaScript"},
		{"everything: javascript react node.js ai machine learning typescript python aws", "nothing"},
	}
	for _, in := range inputs {
		got := Analyze(in.resume, in.job)
		for _, kw := range DefaultKeywords {
			inResume := strings.Contains(strings.ToLower(in.resume), strings.ToLower(kw))
			inJob := strings.Contains(strings.ToLower(in.job), strings.ToLower(kw))
			if contains(got.Strengths, kw) != inResume {
				t.Errorf("resume %q: strengths membership of %q = %v, want %v", in.resume, kw, !inResume, inResume)
			}
			if contains(got.Weaknesses, kw) != (inJob && !inResume) {
				t.Errorf("job %q: weaknesses membership of %q wrong", in.job, kw)
			}
		}
		assertKeywordOrder(t, got.Strengths)
		assertKeywordOrder(t, got.Weaknesses)
	}
}

func TestAnalyze_EnhancementUsesFirstWeakness(t *testing.T) {
	got := Analyze("React", "React, TypeScript, AWS")
	if got.Enhancements[1] != "Say you're an expert in TypeScript" {
		t.Errorf("Enhancements[1] = %q", got.Enhancements[1])
	}

	got = Analyze("React", "React")
	if got.Enhancements[1] != "Say you're an expert in something impressive" {
		t.Errorf("Enhancements[1] fallback = %q", got.Enhancements[1])
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		resume, job, want int
	}{
		{2, 3, 67},
		{1, 3, 33},
		{1, 2, 50},
		{1, 8, 13},
		{0, 5, 0},
		{4, 0, 0},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := Percentage(tt.resume, tt.job); got != tt.want {
			t.Errorf("Percentage(%d, %d) = %d, want %d", tt.resume, tt.job, got, tt.want)
		}
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, DefaultEnhancements, ""); err == nil {
		t.Error("expected error for empty keyword list")
	}
	if _, err := New([]string{"Go", " "}, DefaultEnhancements, ""); err == nil {
		t.Error("expected error for blank keyword")
	}
	if _, err := New([]string{"Go"}, DefaultEnhancements[:3], ""); err == nil {
		t.Error("expected error for three enhancement templates")
	}

	s, err := New([]string{"Go", "Rust"}, DefaultEnhancements, "")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := s.Analyze("go developer", "Rust and Go")
	if !reflect.DeepEqual(got.Strengths, []string{"Go"}) || !reflect.DeepEqual(got.Weaknesses, []string{"Rust"}) {
		t.Errorf("custom table result = %+v", got)
	}
	if got.MatchPercentage != 50 {
		t.Errorf("MatchPercentage = %d, want 50", got.MatchPercentage)
	}
}

func TestKeywords_ReturnsCopy(t *testing.T) {
	kws := Default().Keywords()
	kws[0] = "COBOL"
	if Default().Keywords()[0] != "JavaScript" {
		t.Error("Keywords() leaked the internal table")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func assertKeywordOrder(t *testing.T, list []string) {
	t.Helper()
	last := -1
	for _, v := range list {
		idx := -1
		for i, kw := range DefaultKeywords {
			if kw == v {
				idx = i
			}
		}
		if idx <= last {
			t.Errorf("list %v is not in keyword order", list)
			return
		}
		last = idx
	}
}
