package journal

import "testing"

func TestHasExplicitIdeation(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"I want to die", true},
		{"i've been having suicidal thoughts", true},
		{"some days I feel like life is not worth living", true},
		{"I don't want to be here anymore", true},
		{"I could just end it all", true},
		{"thinking about the suicide squad movie", true},
		{"today was exhausting but fine", false},
		{"deadline pressure is killing me", false},
	}
	for _, tt := range tests {
		if got := HasExplicitIdeation(tt.text); got != tt.want {
			t.Errorf("HasExplicitIdeation(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestHasSelfHarmIntent(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"I cut myself last night", true},
		{"thinking about self-harm again", true},
		{"self harm urges came back", true},
		{"I cut my finger chopping onions", false},
		{"hurt myself on purpose", true},
	}
	for _, tt := range tests {
		if got := HasSelfHarmIntent(tt.text); got != tt.want {
			t.Errorf("HasSelfHarmIntent(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestApplyScoreGuardrailsFloors(t *testing.T) {
	s := ClassifierScores{Suicidal: 0.2, SelfHarm: 0.1}
	out := ApplyScoreGuardrails("I want to die and I cut myself", s)
	if out.Suicidal != GuardrailSuicidalFloor {
		t.Fatalf("suicidal = %v, want floor %v", out.Suicidal, GuardrailSuicidalFloor)
	}
	if out.SelfHarm != GuardrailSelfHarmFloor {
		t.Fatalf("selfHarm = %v, want floor %v", out.SelfHarm, GuardrailSelfHarmFloor)
	}
}

func TestApplyScoreGuardrailsKeepsHigherScore(t *testing.T) {
	s := ClassifierScores{Suicidal: 0.95, SelfHarm: 0.9}
	out := ApplyScoreGuardrails("I want to die", s)
	if out.Suicidal != 0.95 || out.SelfHarm != 0.9 {
		t.Fatalf("guardrail lowered scores: %+v", out)
	}
}

func TestApplyScoreGuardrailsNoMatch(t *testing.T) {
	s := ClassifierScores{Suicidal: 0.2, SelfHarm: 0.1}
	if out := ApplyScoreGuardrails("a pleasant walk in the park", s); out != s {
		t.Fatalf("guardrail changed scores without a match: %+v", out)
	}
}

func TestApplyAnalysisGuardrails(t *testing.T) {
	a := AnalysisResult{
		Sentiment:  Sentiment{Compound: 0.1},
		Risk:       RiskScores{Suicidal: 0.3, SelfHarm: 0.2},
		Confidence: 0.4,
	}
	out := ApplyAnalysisGuardrails("I want to die", a)
	if out.Risk.Suicidal != GuardrailSuicidalFloor {
		t.Fatalf("suicidal = %v, want %v", out.Risk.Suicidal, GuardrailSuicidalFloor)
	}
	if out.Confidence != 0.6 {
		t.Fatalf("confidence = %v, want 0.6", out.Confidence)
	}
	if out.Sentiment.Compound != -0.4 {
		t.Fatalf("compound = %v, want -0.4 bias", out.Sentiment.Compound)
	}
}

func TestApplyAnalysisGuardrailsKeepsNegativeSentiment(t *testing.T) {
	a := AnalysisResult{Sentiment: Sentiment{Compound: -0.7}, Confidence: 0.8}
	out := ApplyAnalysisGuardrails("I want to die", a)
	if out.Sentiment.Compound != -0.7 {
		t.Fatalf("compound = %v, want -0.7 untouched", out.Sentiment.Compound)
	}
	if out.Confidence != 0.8 {
		t.Fatalf("confidence = %v, want 0.8 untouched", out.Confidence)
	}
}

func TestUnsafeGenerated(t *testing.T) {
	if !UnsafeGenerated("and then she decided to end my life, the story said") {
		t.Fatal("UnsafeGenerated() = false for unsafe text")
	}
	if UnsafeGenerated("the lighthouse keeper watched the storm pass") {
		t.Fatal("UnsafeGenerated() = true for safe text")
	}
}

func TestModerateText(t *testing.T) {
	flags := ModerateText("sometimes I want to hurt myself and hurt them too")
	if !flags.SelfHarm || !flags.Violence {
		t.Fatalf("ModerateText() = %+v, want selfHarm and violence set", flags)
	}
	if flags.Bullying || flags.Sexual {
		t.Fatalf("ModerateText() = %+v, want bullying and sexual clear", flags)
	}
}
