package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"solace/internal/bootstrap/logging"
	"solace/internal/domain/journal"
	"solace/internal/errs"
)

const (
	classifierPathHeuristic = "heuristic"
	classifierPathLLM       = "llm"
	classifierPathFinetuned = "ft"

	// Inputs shorter than this carry no usable signal; no backend runs.
	minClassifiableChars = 8
)

// ClassifierOutcome is the audited result of one classification.
type ClassifierOutcome struct {
	Scores    journal.ClassifierScores
	Shadow    journal.ShadowGate
	Path      string
	Fallback  bool
	LatencyMs int64
}

const classifierPromptTemplate = `You are a clinical triage scorer for journal entries. Score the entry on six axes, each in [0,1].

Respond with strict JSON only, no prose, exactly these keys:
{"emotionalIntensity":0,"distress":0,"suicidal":0,"selfHarm":0,"violence":0,"depth":0}

Entry:
`

// Classify scores the entry text for the audit trail and shadow gating.
// Model failures never fail the caller: every error path lands on the
// lexical fallback, and the guardrail floor applies to all paths.
func (s *Service) Classify(ctx context.Context, text string) ClassifierOutcome {
	started := s.now()

	if len(strings.TrimSpace(text)) < minClassifiableChars {
		scores := journal.LowRiskScores()
		return ClassifierOutcome{
			Scores:    scores,
			Shadow:    journal.GatingShadow(scores),
			Path:      "short_input",
			LatencyMs: s.now().Sub(started).Milliseconds(),
		}
	}

	path := s.classifierPath
	scores, fellBack := s.classifyOnPath(ctx, path, text)
	scores = journal.ApplyScoreGuardrails(text, scores)

	return ClassifierOutcome{
		Scores:    scores,
		Shadow:    journal.GatingShadow(scores),
		Path:      path,
		Fallback:  fellBack,
		LatencyMs: s.now().Sub(started).Milliseconds(),
	}
}

func (s *Service) classifyOnPath(ctx context.Context, path string, text string) (journal.ClassifierScores, bool) {
	switch path {
	case classifierPathLLM, classifierPathFinetuned:
		if s.model == nil {
			return journal.HeuristicScores(text), true
		}
		scores, err := s.classifyWithModel(ctx, text)
		if err != nil {
			logging.Warn(ctx, "classifier model failed, using heuristic fallback",
				slog.String("path", path),
				slog.Any("err", errs.Loggable(err)),
			)
			return journal.HeuristicScores(text), true
		}
		return scores, false
	default:
		return journal.HeuristicScores(text), false
	}
}

func (s *Service) classifyWithModel(ctx context.Context, text string) (journal.ClassifierScores, error) {
	timeout := time.Duration(s.profile.Generation.AnalysisTimeoutMs) * time.Millisecond
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := s.model.Complete(callCtx, s.analysisModel, classifierPromptTemplate+text)
	if err != nil {
		return journal.ClassifierScores{}, err
	}

	scores, err := decodeClassifierJSON(raw)
	if err != nil {
		return journal.ClassifierScores{}, err
	}
	return clampScores(scores), nil
}

// decodeClassifierJSON parses a strict score object out of a completion.
// Models wrap JSON in prose or fences often enough that we extract the
// outermost object before decoding; unknown keys are rejected.
func decodeClassifierJSON(raw string) (journal.ClassifierScores, error) {
	obj, err := extractJSONObject(raw)
	if err != nil {
		return journal.ClassifierScores{}, err
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(obj)))
	dec.DisallowUnknownFields()

	var scores journal.ClassifierScores
	if err := dec.Decode(&scores); err != nil {
		return journal.ClassifierScores{}, errs.Wrap(err, "decode classifier scores")
	}
	return scores, nil
}

func clampScores(s journal.ClassifierScores) journal.ClassifierScores {
	s.EmotionalIntensity = journal.Clamp01(s.EmotionalIntensity)
	s.Distress = journal.Clamp01(s.Distress)
	s.Suicidal = journal.Clamp01(s.Suicidal)
	s.SelfHarm = journal.Clamp01(s.SelfHarm)
	s.Violence = journal.Clamp01(s.Violence)
	s.Depth = journal.Clamp01(s.Depth)
	return s
}
