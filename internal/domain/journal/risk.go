package journal

import "math"

type RiskAction string

const (
	ActionNone RiskAction = "none"
	ActionSoft RiskAction = "soft"
	ActionHard RiskAction = "hard"
)

// Severity orders actions for comparisons: none < soft < hard.
func (a RiskAction) Severity() int {
	switch a {
	case ActionSoft:
		return 1
	case ActionHard:
		return 2
	default:
		return 0
	}
}

type RiskInputs struct {
	Suicidal float64
	SelfHarm float64
	Compound float64
}

type RiskDecision struct {
	Action  RiskAction
	Score   float64
	Reasons []string
}

type AlertTier string

const (
	TierNone         AlertTier = "none"
	TierPatternWatch AlertTier = "pattern_watch"
	TierSoftNudge    AlertTier = "soft_nudge"
	TierHardEscalate AlertTier = "hard_escalate"
)

type CompositeDecision struct {
	Tier  AlertTier
	Score float64
}

// RiskThresholds holds every cut point and weight used by the two scorers.
// The two scorers are intentionally independent: alerting stays sensitive,
// enforcement stays conservative, so their thresholds must be tunable apart.
type RiskThresholds struct {
	SuicidalHard     float64 `toml:"suicidal_hard"`
	SuicidalMid      float64 `toml:"suicidal_mid"`
	MidCompoundBelow float64 `toml:"mid_compound_below"`
	SelfHarmSoft     float64 `toml:"self_harm_soft"`

	SuicidalWeight  float64 `toml:"suicidal_weight"`
	SelfHarmWeight  float64 `toml:"self_harm_weight"`
	SentimentWeight float64 `toml:"sentiment_weight"`
	SentimentFloor  float64 `toml:"sentiment_floor"`
	IdeationBoost   float64 `toml:"ideation_boost"`
	SelfHarmBoost   float64 `toml:"self_harm_boost"`

	CompositeHard  float64 `toml:"composite_hard"`
	CompositeSoft  float64 `toml:"composite_soft"`
	CompositeWatch float64 `toml:"composite_watch"`
}

func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{
		SuicidalHard:     0.8,
		SuicidalMid:      0.6,
		MidCompoundBelow: -0.4,
		SelfHarmSoft:     0.7,

		SuicidalWeight:  0.55,
		SelfHarmWeight:  0.25,
		SentimentWeight: 0.2,
		SentimentFloor:  -0.35,
		IdeationBoost:   0.18,
		SelfHarmBoost:   0.12,

		CompositeHard:  0.85,
		CompositeSoft:  0.58,
		CompositeWatch: 0.42,
	}
}

// EvaluateRisk is the enforcement-side decision: first match wins.
func EvaluateRisk(in RiskInputs, th RiskThresholds) RiskDecision {
	switch {
	case in.Suicidal >= th.SuicidalHard:
		return RiskDecision{
			Action:  ActionHard,
			Score:   round3(in.Suicidal),
			Reasons: []string{"suicidal_high"},
		}
	case in.Suicidal >= th.SuicidalMid && in.Compound < th.MidCompoundBelow:
		return RiskDecision{
			Action:  ActionSoft,
			Score:   round3((in.Suicidal + math.Abs(in.Compound)) / 2),
			Reasons: []string{"suicidal_mid_negative_sentiment"},
		}
	case in.SelfHarm >= th.SelfHarmSoft:
		return RiskDecision{
			Action:  ActionSoft,
			Score:   round3(in.SelfHarm),
			Reasons: []string{"selfHarm_high"},
		}
	default:
		return RiskDecision{Action: ActionNone, Reasons: []string{}}
	}
}

// CompositeRisk is the alerting-side scorer: a weighted blend of risk
// channels, a keyword boost on the raw text, and a negative-sentiment term.
func CompositeRisk(risk RiskScores, sentiment float64, text string, th RiskThresholds) CompositeDecision {
	boost := 0.0
	if compositeIdeationPattern.MatchString(text) {
		boost += th.IdeationBoost
	}
	if selfHarmPattern.MatchString(text) {
		boost += th.SelfHarmBoost
	}

	sentimentTerm := 0.0
	if sentiment < th.SentimentFloor {
		sentimentTerm = math.Abs(sentiment)
	}

	composite := th.SuicidalWeight*risk.Suicidal +
		th.SelfHarmWeight*risk.SelfHarm +
		th.SentimentWeight*sentimentTerm +
		boost

	tier := TierNone
	switch {
	case composite > th.CompositeHard:
		tier = TierHardEscalate
	case composite > th.CompositeSoft:
		tier = TierSoftNudge
	case composite > th.CompositeWatch:
		tier = TierPatternWatch
	}
	return CompositeDecision{Tier: tier, Score: composite}
}

// ShadowGate is the shadow-mode gating signal logged with every classifier
// decision; it is never read back by the pipeline.
type ShadowGate struct {
	WouldEscalate bool   `json:"wouldEscalate"`
	Reason        string `json:"reason,omitempty"`
}

func GatingShadow(s ClassifierScores) ShadowGate {
	switch {
	case s.Suicidal >= 0.75:
		return ShadowGate{WouldEscalate: true, Reason: "suicidal"}
	case s.SelfHarm >= 0.65:
		return ShadowGate{WouldEscalate: true, Reason: "selfHarm"}
	case s.Distress >= 0.8 && s.EmotionalIntensity >= 0.8:
		return ShadowGate{WouldEscalate: true, Reason: "distress_combo"}
	default:
		return ShadowGate{}
	}
}

func round3(n float64) float64 {
	return math.Round(n*1000) / 1000
}
