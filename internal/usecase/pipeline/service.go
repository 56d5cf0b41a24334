package pipeline

import (
	"time"

	"solace/internal/domain/journal"
	"solace/internal/ports"
)

// Service runs the journal pipeline: ingestion, insight derivation and
// capsule generation. Every stage is idempotent under redelivery.
type Service struct {
	repo    ports.JournalRepository
	uow     ports.UnitOfWork
	bus     ports.EventBus
	model   ports.TextModel
	profile Profile

	classifierPath string
	enforcement    journal.EnforcementMode
	analysisModel  string
	storyModel     string
	embedModel     string

	// now is injectable so rate-limit and timestamp behavior is testable.
	now func() time.Time
}

type Options struct {
	ClassifierPath string
	Enforcement    journal.EnforcementMode
	AnalysisModel  string
	StoryModel     string
	EmbedModel     string
}

// NewService wires the pipeline. A nil model keeps every inference path on
// deterministic fallbacks.
func NewService(repo ports.JournalRepository, uow ports.UnitOfWork, bus ports.EventBus, model ports.TextModel, profile Profile, opts Options) *Service {
	path := opts.ClassifierPath
	if path == "" {
		path = classifierPathLLM
	}
	return &Service{
		repo:           repo,
		uow:            uow,
		bus:            bus,
		model:          model,
		profile:        profile,
		classifierPath: path,
		enforcement:    opts.Enforcement,
		analysisModel:  opts.AnalysisModel,
		storyModel:     opts.StoryModel,
		embedModel:     opts.EmbedModel,
		now:            time.Now,
	}
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(time.RFC3339Nano)
}
