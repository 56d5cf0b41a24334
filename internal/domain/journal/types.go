package journal

// EmotionScore is one labeled emotion with a confidence-weighted score.
type EmotionScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type Sentiment struct {
	Compound float64 `json:"compound"`
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
}

type RiskScores struct {
	Suicidal float64 `json:"suicidal"`
	SelfHarm float64 `json:"self_harm"`
	Violence float64 `json:"violence"`
}

// AnalysisResult is the structured analysis an Insight is built from.
type AnalysisResult struct {
	Emotions   []EmotionScore `json:"emotions"`
	Sentiment  Sentiment      `json:"sentiment"`
	Topics     []string       `json:"topics"`
	Risk       RiskScores     `json:"risk"`
	Confidence float64        `json:"confidence"`
}

// ClassifierScores is the audit-only score vector. It deliberately stays
// separate from AnalysisResult so the two can evolve independently and be
// compared in shadow mode.
type ClassifierScores struct {
	EmotionalIntensity float64 `json:"emotionalIntensity"`
	Distress           float64 `json:"distress"`
	Suicidal           float64 `json:"suicidal"`
	SelfHarm           float64 `json:"selfHarm"`
	Violence           float64 `json:"violence"`
	Depth              float64 `json:"depth"`
}

type CapsuleType string

const (
	CapsuleStory     CapsuleType = "story"
	CapsuleBreathing CapsuleType = "breathing"
	CapsulePlaylist  CapsuleType = "playlist"
	CapsuleArt       CapsuleType = "art"
)

// CapsulePayload is the generated artifact body. Exactly one modality group
// is populated for a fresh generation; reuse copies the donor payload and
// stamps the provenance fields.
type CapsulePayload struct {
	Story           string   `json:"story,omitempty"`
	Steps           []string `json:"steps,omitempty"`
	Tracks          []string `json:"tracks,omitempty"`
	ArtPrompt       string   `json:"artPrompt,omitempty"`
	ArtStyle        string   `json:"artStyle,omitempty"`
	Palette         []string `json:"palette,omitempty"`
	ReusedFrom      string   `json:"reusedFrom,omitempty"`
	SimilarityScore float64  `json:"similarityScore,omitempty"`
}

// ModerationFlags are the ingestion-time lexical content flags.
type ModerationFlags struct {
	SelfHarm bool `json:"selfHarm"`
	Violence bool `json:"violence"`
	Bullying bool `json:"bullying"`
	Sexual   bool `json:"sexual"`
}

func Clamp01(n float64) float64 {
	if n != n || n < 0 {
		return 0
	}
	if n > 1 {
		return 1
	}
	return n
}

func ClampSigned(n float64) float64 {
	if n != n {
		return 0
	}
	if n < -1 {
		return -1
	}
	if n > 1 {
		return 1
	}
	return n
}
