package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"solace/internal/domain/journal"
	"solace/internal/errs"
)

var errNoJSONObject = errors.New("completion contains no JSON object")

const storyPromptTemplate = `Write a short, gentle, second-person comfort story (under 900 characters) for someone whose journal reads like this. Do not mention journaling, therapy, or give advice. No violence, no death, no self-harm themes. Plain prose only.

Theme: `

const breathingPromptTemplate = `Design a short breathing exercise for someone feeling this way. Respond with strict JSON only: {"steps":["..."]}. Three to six steps, each under 40 characters, imperative voice.

Mood: `

const artPromptTemplate = `Suggest a calming art prompt for someone feeling this way. Respond with strict JSON only: {"artPrompt":"...","artStyle":"...","palette":["...","...","..."]}.

Mood: `

// generateCapsule produces the payload for a fresh capsule. The bool
// reports whether a fallback was served: model errors, timeouts, unsafe
// output and malformed responses all land on the static payloads rather
// than failing the stage.
func (s *Service) generateCapsule(ctx context.Context, capsuleType journal.CapsuleType, mood string) (journal.CapsulePayload, bool) {
	switch capsuleType {
	case journal.CapsuleStory:
		return s.generateStory(ctx, mood)
	case journal.CapsuleBreathing:
		return s.generateBreathing(ctx, mood)
	case journal.CapsuleArt:
		return s.generateArt(ctx, mood)
	default:
		return journal.CapsulePayload{Tracks: journal.FallbackTracks()}, false
	}
}

func (s *Service) generateStory(ctx context.Context, theme string) (journal.CapsulePayload, bool) {
	if s.model == nil {
		return journal.CapsulePayload{Story: journal.FallbackStory}, false
	}

	callCtx, cancel := context.WithTimeout(ctx, time.Duration(s.profile.Generation.StoryTimeoutMs)*time.Millisecond)
	defer cancel()

	raw, err := s.model.Complete(callCtx, s.storyModel, storyPromptTemplate+theme)
	if err != nil {
		return journal.CapsulePayload{Story: journal.FallbackStory}, true
	}

	story := journal.ClampText(strings.TrimSpace(raw), s.profile.Generation.StoryMaxChars)
	if story == "" || journal.UnsafeGenerated(story) {
		return journal.CapsulePayload{Story: journal.FallbackStory}, true
	}
	return journal.CapsulePayload{Story: story}, false
}

func (s *Service) generateBreathing(ctx context.Context, mood string) (journal.CapsulePayload, bool) {
	if s.model == nil {
		return journal.CapsulePayload{Steps: journal.FallbackBreathingSteps()}, false
	}

	callCtx, cancel := context.WithTimeout(ctx, time.Duration(s.profile.Generation.StoryTimeoutMs)*time.Millisecond)
	defer cancel()

	raw, err := s.model.Complete(callCtx, s.storyModel, breathingPromptTemplate+mood)
	if err != nil {
		return journal.CapsulePayload{Steps: journal.FallbackBreathingSteps()}, true
	}

	steps, err := decodeBreathingJSON(raw)
	if err != nil || len(steps) < 3 || len(steps) > 6 {
		return journal.CapsulePayload{Steps: journal.FallbackBreathingSteps()}, true
	}
	return journal.CapsulePayload{Steps: steps}, false
}

func (s *Service) generateArt(ctx context.Context, mood string) (journal.CapsulePayload, bool) {
	fallback := journal.CapsulePayload{
		ArtPrompt: "A quiet shoreline at dusk, soft waves, one small boat at rest",
		ArtStyle:  "watercolor",
		Palette:   []string{"#4a6d8c", "#a3c4bc", "#f1e3d3"},
	}
	if s.model == nil {
		return fallback, false
	}

	callCtx, cancel := context.WithTimeout(ctx, time.Duration(s.profile.Generation.StoryTimeoutMs)*time.Millisecond)
	defer cancel()

	raw, err := s.model.Complete(callCtx, s.storyModel, artPromptTemplate+mood)
	if err != nil {
		return fallback, true
	}

	payload, err := decodeArtJSON(raw)
	if err != nil || payload.ArtPrompt == "" || journal.UnsafeGenerated(payload.ArtPrompt) {
		return fallback, true
	}
	return payload, false
}

func decodeBreathingJSON(raw string) ([]string, error) {
	obj, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var plan struct {
		Steps []string `json:"steps"`
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(obj)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&plan); err != nil {
		return nil, errs.Wrap(err, "decode breathing plan")
	}

	steps := make([]string, 0, len(plan.Steps))
	for _, step := range plan.Steps {
		if trimmed := strings.TrimSpace(step); trimmed != "" {
			steps = append(steps, trimmed)
		}
	}
	return steps, nil
}

func decodeArtJSON(raw string) (journal.CapsulePayload, error) {
	obj, err := extractJSONObject(raw)
	if err != nil {
		return journal.CapsulePayload{}, err
	}

	var plan struct {
		ArtPrompt string   `json:"artPrompt"`
		ArtStyle  string   `json:"artStyle"`
		Palette   []string `json:"palette"`
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(obj)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&plan); err != nil {
		return journal.CapsulePayload{}, errs.Wrap(err, "decode art plan")
	}
	return journal.CapsulePayload{
		ArtPrompt: strings.TrimSpace(plan.ArtPrompt),
		ArtStyle:  strings.TrimSpace(plan.ArtStyle),
		Palette:   plan.Palette,
	}, nil
}

func extractJSONObject(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return "", errNoJSONObject
	}
	return raw[start : end+1], nil
}
