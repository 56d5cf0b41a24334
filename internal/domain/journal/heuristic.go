package journal

import (
	"regexp"
	"strings"
)

// Lexical fallback scoring. Deterministic, zero external dependency; it is
// the universal fallback for every model-backed path, so it has to err on
// the side of catching explicit phrasing.

var (
	intenseTokens = []string{"overwhelmed", "shaking", "panic", "panicking", "devastated", "furious", "numb", "empty", "exhausted"}

	distressTokens = []string{"cant cope", "can't cope", "breaking down", "collapse", "screaming", "crying", "tears", "anxiety", "anxious", "panic"}

	ideationTokens = []string{
		"i want to die", "end my life", "kill myself", "suicide", "dont want to exist", "don't want to exist",
		"suicidal", "suicidal thoughts", "suicidal ideation", "end it all", "life not worth living", "i can't go on", "don't want to be here",
	}

	selfHarmTokens = []string{"cut myself", "cutting myself", "burn myself", "self-harm", "self harm", "self injury", "self-injury", "bleed", "hurt myself on purpose"}

	violenceTokens = []string{"hurt them", "kill them", "attack", "revenge"}

	positiveWords = []string{"happy", "great", "excited", "grateful", "calm", "peace", "good", "relieved", "hope", "optimistic", "joy", "proud", "content"}

	negativeWords = []string{"sad", "tired", "anxious", "anxiety", "stress", "stressed", "angry", "lonely", "worthless", "die", "suicide", "suicidal", "end", "hopeless", "depressed", "helpless", "ashamed", "failure", "fail", "empty"}

	nonAlnumPattern = regexp.MustCompile(`[^a-z0-9\s]`)
)

// emotionLexicon maps discrete emotion labels to trigger words, checked in
// a fixed order so the detected emotion list is deterministic.
var emotionLexicon = []struct {
	label string
	words []string
}{
	{"anxiety", []string{"anxious", "anxiety", "panic", "panicking", "worried", "nervous"}},
	{"stress", []string{"stress", "stressed", "overwhelmed", "pressure"}},
	{"sadness", []string{"sad", "depressed", "crying", "tears", "hopeless"}},
	{"loneliness", []string{"lonely", "alone", "isolated"}},
	{"anger", []string{"angry", "furious", "rage"}},
	{"fear", []string{"afraid", "scared", "terrified"}},
	{"grief", []string{"grief", "grieving", "mourning"}},
}

// LowRiskScores is the fixed vector returned for inputs too short to carry
// meaningful signal; no backend is invoked for them.
func LowRiskScores() ClassifierScores {
	return ClassifierScores{
		EmotionalIntensity: 0.1,
		Distress:           0.1,
		Suicidal:           0.02,
		SelfHarm:           0.01,
		Violence:           0.01,
		Depth:              0.1,
	}
}

// HeuristicScores is the lexical classifier path: additive phrase scoring
// with per-channel caps.
func HeuristicScores(text string) ClassifierScores {
	t := strings.ToLower(text)

	score := func(list []string, base, per, cap float64) float64 {
		s := base
		for _, phrase := range list {
			if strings.Contains(t, phrase) {
				s += per
			}
		}
		if s > cap {
			return cap
		}
		return s
	}

	suicidal := score(ideationTokens, 0.03, 0.38, 0.95)
	selfHarm := score(selfHarmTokens, 0.02, 0.32, 0.95)
	if suicidal-0.12 > selfHarm {
		selfHarm = suicidal - 0.12
	}
	violence := score(violenceTokens, 0.01, 0.25, 0.9)
	intensity := score(intenseTokens, 0.05, 0.08, 0.95)
	distress := score(distressTokens, 0.05, 0.07, 0.95)
	if intensity*0.6 > distress {
		distress = intensity * 0.6
	}

	// Depth: crude proxy from vocabulary diversity and length.
	tokens := strings.Fields(nonAlnumPattern.ReplaceAllString(t, " "))
	uniq := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		uniq[tok] = struct{}{}
	}
	lengthTerm := float64(len(tokens)) / 250
	if lengthTerm > 1 {
		lengthTerm = 1
	}
	depth := Clamp01(float64(len(uniq))/float64(len(tokens)+1)*0.6 + lengthTerm*0.4)

	return ClassifierScores{
		EmotionalIntensity: intensity,
		Distress:           distress,
		Suicidal:           suicidal,
		SelfHarm:           selfHarm,
		Violence:           violence,
		Depth:              depth,
	}
}

// NeutralAnalysis is the fixed result for near-empty input.
func NeutralAnalysis() AnalysisResult {
	return AnalysisResult{
		Emotions:   []EmotionScore{{Label: "neutral", Score: 0.1}},
		Sentiment:  Sentiment{},
		Topics:     []string{},
		Risk:       RiskScores{Suicidal: 0.02, SelfHarm: 0.01, Violence: 0.01},
		Confidence: 0.2,
	}
}

// HeuristicAnalysis is the lexical analysis fallback: word-count sentiment,
// regex risk, crude topic extraction, and a sentiment-led emotion list
// enriched with discrete emotions from the lexicon.
func HeuristicAnalysis(text string) AnalysisResult {
	t := strings.ToLower(text)

	pos, neg := 0, 0
	for _, w := range positiveWords {
		if strings.Contains(t, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(t, w) {
			neg++
		}
	}
	total := pos + neg
	if total == 0 {
		total = 1
	}
	compound := float64(pos-neg) / float64(total)

	suicidal := 0.05
	if HasExplicitIdeation(t) {
		suicidal = 0.9
	}
	selfHarm := suicidal - 0.15
	if HasSelfHarmIntent(t) || strings.Contains(t, "bleed") {
		selfHarm = suicidal - 0.1
		if selfHarm < 0.75 {
			selfHarm = 0.75
		}
	}
	if selfHarm < 0.05 {
		selfHarm = 0.05
	}

	topics := extractTopics(t, 5)

	label := "neutral"
	if compound > 0.25 {
		label = "positive"
	} else if compound < -0.25 {
		label = "negative"
	}
	emotions := []EmotionScore{{Label: label, Score: Clamp01(absFloat(compound))}}
	emotions = append(emotions, detectEmotions(t, 3)...)

	return AnalysisResult{
		Emotions: emotions,
		Sentiment: Sentiment{
			Compound: round3(compound),
			Positive: round3(float64(pos) / float64(total)),
			Negative: round3(float64(neg) / float64(total)),
		},
		Topics: topics,
		Risk: RiskScores{
			Suicidal: round3(suicidal),
			SelfHarm: round3(selfHarm),
			Violence: 0.05,
		},
		Confidence: 0.4,
	}
}

func extractTopics(lowered string, max int) []string {
	words := strings.Fields(nonAlnumPattern.ReplaceAllString(lowered, " "))
	seen := make(map[string]struct{}, len(words))
	topics := make([]string, 0, max)
	for _, w := range words {
		if len(w) <= 4 {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		topics = append(topics, w)
		if len(topics) == max {
			break
		}
	}
	return topics
}

func detectEmotions(lowered string, max int) []EmotionScore {
	out := make([]EmotionScore, 0, max)
	score := 0.6
	for _, entry := range emotionLexicon {
		for _, w := range entry.words {
			if strings.Contains(lowered, w) {
				out = append(out, EmotionScore{Label: entry.label, Score: score})
				if score > 0.3 {
					score -= 0.1
				}
				break
			}
		}
		if len(out) == max {
			break
		}
	}
	return out
}

func absFloat(n float64) float64 {
	if n < 0 {
		return -n
	}
	return n
}
