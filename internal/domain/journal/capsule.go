package journal

import "strings"

// capsuleTypeByEmotion routes dominant emotions to a capsule format.
// First match across the ordered emotion list wins.
var capsuleTypeByEmotion = map[string]CapsuleType{
	"anxiety":    CapsuleBreathing,
	"stress":     CapsuleBreathing,
	"anger":      CapsuleBreathing,
	"fear":       CapsuleBreathing,
	"panic":      CapsuleBreathing,
	"sadness":    CapsuleStory,
	"loneliness": CapsuleStory,
	"grief":      CapsuleStory,
	"numb":       CapsuleArt,
	"empty":      CapsuleArt,
	"boredom":    CapsuleArt,
}

// SelectCapsuleType picks the capsule format from the emotion list, taking
// the first emotion with a known mapping. Unmapped moods get a playlist.
func SelectCapsuleType(emotions []EmotionScore) CapsuleType {
	for _, e := range emotions {
		if t, ok := capsuleTypeByEmotion[strings.ToLower(e.Label)]; ok {
			return t
		}
	}
	return CapsulePlaylist
}

// StoryMaxChars caps generated story text before it reaches a client.
const StoryMaxChars = 1200

// ClampText truncates text to max characters, preferring the last sentence
// boundary past the midpoint so the cut does not land mid-sentence.
func ClampText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	clipped := text[:max]
	cut := strings.LastIndexAny(clipped, ".!?")
	if cut > max/2 {
		return clipped[:cut+1]
	}
	return clipped
}

// FallbackBreathingSteps is the static breathing exercise used when no
// model is configured or generation fails.
func FallbackBreathingSteps() []string {
	return []string{"Inhale 4", "Hold 2", "Exhale 6", "Repeat 6x"}
}

// FallbackStory is served when generation fails, times out, or the
// generated text trips the safety scrub.
const FallbackStory = "Once, a quiet lighthouse keeper watched a storm pass over the water. The waves rose and fell, and the keeper kept the light steady until the sky cleared. The sea always calmed again, and so did the keeper."

// FallbackTracks is the static playlist capsule.
func FallbackTracks() []string {
	return []string{"Weightless", "Clair de Lune", "Holocene", "Bloom", "Night Owl"}
}
