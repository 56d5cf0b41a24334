package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"solace/internal/bootstrap/logging"
	"solace/internal/domain/journal"
	"solace/internal/errs"
	"solace/internal/ports"
)

// OnEntrySubmitted derives the insight for a submitted entry. Safe under
// at-least-once redelivery: the unique entry_id insert decides a single
// winner, and losers just re-publish the downstream event.
func (s *Service) OnEntrySubmitted(ctx context.Context, entryID string) error {
	ctx = logging.WithAttrs(ctx, slog.String("entry_id", entryID))

	entry, err := s.repo.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.State == string(journal.EntryDraft) {
		logging.Warn(ctx, "submitted event for draft entry, skipping")
		return nil
	}

	if existing, found, err := s.repo.FindInsightByEntry(ctx, entryID); err != nil {
		return err
	} else if found {
		logging.Info(ctx, "insight already exists, re-publishing",
			slog.String("insight_id", existing.InsightID),
		)
		return s.afterInsight(ctx, existing)
	}

	// Analysis and classification hit independent backends; run them
	// together. Both degrade internally instead of failing.
	var (
		wg               sync.WaitGroup
		analysis         journal.AnalysisResult
		analysisFellBack bool
		outcome          ClassifierOutcome
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		analysis, analysisFellBack = s.Analyze(ctx, entry.Text)
	}()
	go func() {
		defer wg.Done()
		outcome = s.Classify(ctx, entry.Text)
	}()
	wg.Wait()

	if analysisFellBack {
		logging.Warn(ctx, "insight built from heuristic analysis")
	}

	composite := journal.CompositeRisk(analysis.Risk, analysis.Sentiment.Compound, entry.Text, s.profile.Risk)
	decision := journal.EvaluateRisk(journal.RiskInputs{
		Suicidal: analysis.Risk.Suicidal,
		SelfHarm: analysis.Risk.SelfHarm,
		Compound: analysis.Sentiment.Compound,
	}, s.profile.Risk)

	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return errs.Wrap(err, "encode analysis")
	}

	insight := ports.InsightRecord{
		InsightID:    uuid.NewString(),
		EntryID:      entry.EntryID,
		UserID:       entry.UserID,
		Summary:      summaryLine(analysis),
		AnalysisJSON: string(analysisJSON),
		AlertTier:    string(composite.Tier),
		RiskScore:    composite.Score,
		Enforcement:  string(s.enforcement),
		CreatedAt:    s.timestamp(),
	}

	inserted, err := s.repo.CreateInsight(ctx, insight)
	if err != nil {
		return err
	}
	if !inserted {
		// Another worker won between the check and the insert.
		winner, found, err := s.repo.FindInsightByEntry(ctx, entryID)
		if err != nil {
			return err
		}
		if !found {
			return ports.ErrInsightNotFound
		}
		return s.afterInsight(ctx, winner)
	}

	ctx = logging.WithAttrs(ctx, slog.String("insight_id", insight.InsightID))
	s.appendClassifierAudit(ctx, entry.EntryID, outcome)

	if next, err := journal.NextEntryState(journal.EntryState(entry.State), journal.EntryProcessed); err == nil {
		if err := s.repo.SetEntryState(ctx, entry.EntryID, string(next), s.timestamp()); err != nil {
			return err
		}
	}

	if err := s.raiseAlerts(ctx, entry, insight, composite, decision); err != nil {
		return err
	}

	logging.Info(ctx, "insight created",
		slog.String("tier", string(composite.Tier)),
		slog.Float64("risk_score", composite.Score),
		slog.String("action", string(decision.Action)),
	)
	return s.afterInsight(ctx, insight)
}

// afterInsight decides whether the capsule stage runs. Under hard
// enforcement every entry is held for review instead of receiving a
// capsule.
func (s *Service) afterInsight(ctx context.Context, insight ports.InsightRecord) error {
	if journal.EnforcementMode(insight.Enforcement) == journal.EnforcementHard {
		if err := s.repo.SetEntryState(ctx, insight.EntryID, string(journal.EntryNeedsReview), s.timestamp()); err != nil {
			return err
		}
		logging.Warn(ctx, "capsule generation gated by hard enforcement",
			slog.String("insight_id", insight.InsightID),
		)
		return nil
	}
	return s.publishInsightCreated(ctx, insight.InsightID)
}

// raiseAlerts writes at most one alert per insight. The composite tier is
// written first; the safety decision only lands when the composite did
// not fire.
func (s *Service) raiseAlerts(ctx context.Context, entry ports.EntryRecord, insight ports.InsightRecord, composite journal.CompositeDecision, decision journal.RiskDecision) error {
	if composite.Tier != journal.TierNone {
		action := "shown_resources"
		if composite.Tier == journal.TierHardEscalate {
			action = "escalated"
		}
		alert := ports.AlertRecord{
			AlertID:   uuid.NewString(),
			InsightID: insight.InsightID,
			EntryID:   entry.EntryID,
			UserID:    entry.UserID,
			Tier:      string(composite.Tier),
			Score:     composite.Score,
			Source:    "composite",
			Action:    action,
			CreatedAt: s.timestamp(),
		}
		if _, err := s.repo.CreateAlert(ctx, alert); err != nil {
			return err
		}
	}

	if decision.Action != journal.ActionNone {
		reasonsJSON, err := json.Marshal(decision.Reasons)
		if err != nil {
			return errs.Wrap(err, "encode alert reasons")
		}
		action := "shown_resources"
		if decision.Action == journal.ActionHard {
			action = "escalated"
		}
		alert := ports.AlertRecord{
			AlertID:     uuid.NewString(),
			InsightID:   insight.InsightID,
			EntryID:     entry.EntryID,
			UserID:      entry.UserID,
			Tier:        string(decision.Action),
			Score:       decision.Score,
			ReasonsJSON: string(reasonsJSON),
			Source:      "safety",
			Action:      action,
			CreatedAt:   s.timestamp(),
		}
		// The unique insight_id index keeps this a no-op when the
		// composite alert already landed.
		if _, err := s.repo.CreateAlert(ctx, alert); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) appendClassifierAudit(ctx context.Context, entryID string, outcome ClassifierOutcome) {
	scoresJSON, err := json.Marshal(outcome.Scores)
	if err != nil {
		logging.Warn(ctx, "classifier audit encode failed", slog.Any("err", errs.Loggable(err)))
		return
	}
	shadowJSON, err := json.Marshal(outcome.Shadow)
	if err != nil {
		logging.Warn(ctx, "classifier audit encode failed", slog.Any("err", errs.Loggable(err)))
		return
	}
	record := ports.ClassifierDecisionRecord{
		DecisionID: uuid.NewString(),
		EntryID:    entryID,
		Path:       outcome.Path,
		ScoresJSON: string(scoresJSON),
		ShadowJSON: string(shadowJSON),
		Fallback:   outcome.Fallback,
		LatencyMs:  outcome.LatencyMs,
		CreatedAt:  s.timestamp(),
	}
	// Audit trail is best effort and must never fail the pipeline.
	if err := s.repo.AppendClassifierDecision(ctx, record); err != nil {
		logging.Warn(ctx, "classifier audit write failed", slog.Any("err", errs.Loggable(err)))
	}
}

// summaryLine is a one-line human summary assembled from the dominant
// emotion and topics. No model call: the analysis already carries the
// ingredients.
func summaryLine(a journal.AnalysisResult) string {
	mood := "neutral"
	if len(a.Emotions) > 0 && a.Emotions[0].Label != "" {
		mood = a.Emotions[0].Label
	}

	var b strings.Builder
	b.WriteString("Mood reads ")
	b.WriteString(mood)
	if len(a.Topics) > 0 {
		b.WriteString("; themes: ")
		limit := len(a.Topics)
		if limit > 3 {
			limit = 3
		}
		b.WriteString(strings.Join(a.Topics[:limit], ", "))
	}
	b.WriteString(".")
	return b.String()
}
