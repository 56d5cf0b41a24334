package journal

import "testing"

func TestHeuristicScoresIdeation(t *testing.T) {
	s := HeuristicScores("I keep thinking I want to die, I can't go on like this")
	if s.Suicidal < 0.7 {
		t.Fatalf("suicidal = %v, want >= 0.7 for explicit ideation", s.Suicidal)
	}
	if s.SelfHarm < s.Suicidal-0.12-1e-9 {
		t.Fatalf("selfHarm = %v not floored against suicidal %v", s.SelfHarm, s.Suicidal)
	}
}

func TestHeuristicScoresCalmText(t *testing.T) {
	s := HeuristicScores("Had a lovely picnic with friends in the park, we played frisbee and laughed a lot")
	if s.Suicidal > 0.1 || s.SelfHarm > 0.1 || s.Violence > 0.1 {
		t.Fatalf("calm text scored risky: %+v", s)
	}
}

func TestHeuristicScoresDistressFollowsIntensity(t *testing.T) {
	s := HeuristicScores("completely overwhelmed and shaking, devastated and exhausted")
	if s.Distress < s.EmotionalIntensity*0.6-1e-9 {
		t.Fatalf("distress %v below intensity floor %v", s.Distress, s.EmotionalIntensity*0.6)
	}
}

func TestLowRiskScores(t *testing.T) {
	s := LowRiskScores()
	want := ClassifierScores{EmotionalIntensity: 0.1, Distress: 0.1, Suicidal: 0.02, SelfHarm: 0.01, Violence: 0.01, Depth: 0.1}
	if s != want {
		t.Fatalf("LowRiskScores() = %+v, want %+v", s, want)
	}
}

func TestHeuristicAnalysisNegativeSentiment(t *testing.T) {
	a := HeuristicAnalysis("I feel anxious and stressed about my exams, everything is hopeless")
	if len(a.Emotions) == 0 || a.Emotions[0].Label != "negative" {
		t.Fatalf("emotions = %+v, want negative lead", a.Emotions)
	}
	if a.Sentiment.Compound >= 0 {
		t.Fatalf("compound = %v, want negative", a.Sentiment.Compound)
	}
	if a.Risk.Suicidal >= 0.1 {
		t.Fatalf("suicidal = %v, want low for exam anxiety", a.Risk.Suicidal)
	}
}

func TestHeuristicAnalysisDetectsDiscreteEmotions(t *testing.T) {
	a := HeuristicAnalysis("I feel anxious and stressed about my exams")
	found := false
	for _, e := range a.Emotions {
		if e.Label == "anxiety" {
			found = true
		}
	}
	if !found {
		t.Fatalf("emotions = %+v, want anxiety present", a.Emotions)
	}
	if got := SelectCapsuleType(a.Emotions); got != CapsuleBreathing {
		t.Fatalf("SelectCapsuleType() = %s, want breathing for anxious text", got)
	}
}

func TestHeuristicAnalysisIdeation(t *testing.T) {
	a := HeuristicAnalysis("Some nights I want to die")
	if a.Risk.Suicidal != 0.9 {
		t.Fatalf("suicidal = %v, want 0.9", a.Risk.Suicidal)
	}
	if a.Risk.SelfHarm < 0.7 {
		t.Fatalf("selfHarm = %v, want trailing suicidal", a.Risk.SelfHarm)
	}
}

func TestHeuristicAnalysisTopics(t *testing.T) {
	a := HeuristicAnalysis("Worried about grades, scholarships, internships, deadlines, roommates, laundry and groceries")
	if len(a.Topics) != 5 {
		t.Fatalf("topics = %v, want exactly 5", a.Topics)
	}
	seen := map[string]bool{}
	for _, topic := range a.Topics {
		if len(topic) <= 4 {
			t.Fatalf("short topic %q leaked through", topic)
		}
		if seen[topic] {
			t.Fatalf("duplicate topic %q", topic)
		}
		seen[topic] = true
	}
}

func TestNeutralAnalysis(t *testing.T) {
	a := NeutralAnalysis()
	if len(a.Emotions) != 1 || a.Emotions[0].Label != "neutral" {
		t.Fatalf("emotions = %+v", a.Emotions)
	}
	if a.Risk.Suicidal != 0.02 {
		t.Fatalf("suicidal = %v, want 0.02", a.Risk.Suicidal)
	}
}
