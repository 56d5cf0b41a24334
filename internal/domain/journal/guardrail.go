package journal

import "regexp"

// High-specificity phrase patterns. The guardrail must never let a weak
// model score suppress an explicit phrase, and must not fire on incidental
// vocabulary either.
var (
	ideationPattern = regexp.MustCompile(`(?i)(suicidal(\b|[^a-z])|suicidal thoughts?|suicidal ideation|life (is|'s)? not worth living|don'?t want to (be here|live)|i can'?t go on|end it all|i want to die|kill myself|end my life|suicide)`)

	selfHarmPattern = regexp.MustCompile(`(?i)(cut(ting)? myself|burn(ing)? myself|self[-\s]?harm|self[-\s]?injur(y|ies)|hurt myself on purpose)`)

	// The alerting scorer scans a slightly different phrase set than the
	// guardrail floor; both are kept verbatim so tuning one cannot silently
	// change the other.
	compositeIdeationPattern = regexp.MustCompile(`(?i)(end it( all)?|disappear|kill myself|no reason to live|life (is|'s)? not worth living|i (just )?want to die|don'?t want to (be here|live)|suicidal(\b|[^a-z]))`)

	unsafeGeneratedPattern = regexp.MustCompile(`(?i)(kill myself|suicide|end my life|self-harm)`)

	moderationSelfHarmPattern = regexp.MustCompile(`(?i)(kill myself|end my life|cut myself|hurt myself)`)
	moderationViolencePattern = regexp.MustCompile(`(?i)(kill them|hurt them|attack)`)
	moderationBullyingPattern = regexp.MustCompile(`(?i)(loser|worthless|nobody likes you)`)
	moderationSexualPattern   = regexp.MustCompile(`(?i)(explicit|nsfw)`)
)

const (
	GuardrailSuicidalFloor = 0.8
	GuardrailSelfHarmFloor = 0.7
)

func HasExplicitIdeation(text string) bool {
	return ideationPattern.MatchString(text)
}

func HasSelfHarmIntent(text string) bool {
	return selfHarmPattern.MatchString(text)
}

// ApplyScoreGuardrails floors the classifier scores for explicit phrasing.
func ApplyScoreGuardrails(text string, s ClassifierScores) ClassifierScores {
	if HasExplicitIdeation(text) && s.Suicidal < GuardrailSuicidalFloor {
		s.Suicidal = GuardrailSuicidalFloor
	}
	if HasSelfHarmIntent(text) && s.SelfHarm < GuardrailSelfHarmFloor {
		s.SelfHarm = GuardrailSelfHarmFloor
	}
	return s
}

// ApplyAnalysisGuardrails floors the analysis risk channels, raises
// confidence, and biases near-neutral sentiment negative when explicit
// ideation is present (the mood label must not read neutral).
func ApplyAnalysisGuardrails(text string, a AnalysisResult) AnalysisResult {
	if HasExplicitIdeation(text) {
		if a.Risk.Suicidal < GuardrailSuicidalFloor {
			a.Risk.Suicidal = GuardrailSuicidalFloor
		}
		if a.Confidence < 0.6 {
			a.Confidence = 0.6
		}
		if a.Sentiment.Compound > -0.2 {
			a.Sentiment.Compound = -0.4
		}
	}
	if HasSelfHarmIntent(text) && a.Risk.SelfHarm < GuardrailSelfHarmFloor {
		a.Risk.SelfHarm = GuardrailSelfHarmFloor
	}
	return a
}

// UnsafeGenerated reports whether generated text fails the post-hoc scrub.
func UnsafeGenerated(text string) bool {
	return unsafeGeneratedPattern.MatchString(text)
}

func ModerateText(text string) ModerationFlags {
	return ModerationFlags{
		SelfHarm: moderationSelfHarmPattern.MatchString(text),
		Violence: moderationViolencePattern.MatchString(text),
		Bullying: moderationBullyingPattern.MatchString(text),
		Sexual:   moderationSexualPattern.MatchString(text),
	}
}
