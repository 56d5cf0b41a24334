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

const analysisPromptTemplate = `You are an empathetic journal analyst. Analyze the entry and respond with strict JSON only, exactly this shape:
{"emotions":[{"label":"","score":0}],"sentiment":{"compound":0,"positive":0,"negative":0},"topics":[""],"risk":{"suicidal":0,"self_harm":0,"violence":0},"confidence":0}

Scores are in [0,1]; sentiment.compound is in [-1,1]. Emotions are ordered most dominant first.

Entry:
`

// Analyze produces the structured analysis an insight is built from. Like
// classification, it degrades to the lexical path on any model failure and
// always passes through the guardrail floor.
func (s *Service) Analyze(ctx context.Context, text string) (journal.AnalysisResult, bool) {
	if len(strings.TrimSpace(text)) < minClassifiableChars {
		return journal.NeutralAnalysis(), false
	}

	if s.model == nil {
		return journal.ApplyAnalysisGuardrails(text, journal.HeuristicAnalysis(text)), false
	}

	result, err := s.analyzeWithModel(ctx, text)
	if err != nil {
		logging.Warn(ctx, "analysis model failed, using heuristic fallback",
			slog.Any("err", errs.Loggable(err)),
		)
		return journal.ApplyAnalysisGuardrails(text, journal.HeuristicAnalysis(text)), true
	}
	return journal.ApplyAnalysisGuardrails(text, result), false
}

func (s *Service) analyzeWithModel(ctx context.Context, text string) (journal.AnalysisResult, error) {
	timeout := time.Duration(s.profile.Generation.AnalysisTimeoutMs) * time.Millisecond
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	raw, err := s.model.Complete(callCtx, s.analysisModel, analysisPromptTemplate+text)
	if err != nil {
		return journal.AnalysisResult{}, err
	}
	return decodeAnalysisJSON(raw)
}

func decodeAnalysisJSON(raw string) (journal.AnalysisResult, error) {
	obj, err := extractJSONObject(raw)
	if err != nil {
		return journal.AnalysisResult{}, err
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(obj)))
	dec.DisallowUnknownFields()

	var result journal.AnalysisResult
	if err := dec.Decode(&result); err != nil {
		return journal.AnalysisResult{}, errs.Wrap(err, "decode analysis")
	}

	result.Sentiment.Compound = journal.ClampSigned(result.Sentiment.Compound)
	result.Sentiment.Positive = journal.Clamp01(result.Sentiment.Positive)
	result.Sentiment.Negative = journal.Clamp01(result.Sentiment.Negative)
	result.Risk.Suicidal = journal.Clamp01(result.Risk.Suicidal)
	result.Risk.SelfHarm = journal.Clamp01(result.Risk.SelfHarm)
	result.Risk.Violence = journal.Clamp01(result.Risk.Violence)
	result.Confidence = journal.Clamp01(result.Confidence)
	for i := range result.Emotions {
		result.Emotions[i].Score = journal.Clamp01(result.Emotions[i].Score)
	}
	return result, nil
}
