package pipeline

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"solace/internal/domain/journal"
	"solace/internal/infrastructure/persistence/sqlite/model"
	"solace/internal/infrastructure/persistence/sqlite/repository"
	"solace/internal/infrastructure/persistence/sqlite/uow"
	"solace/internal/ports"
)

type fakeBus struct {
	mu        sync.Mutex
	published []busMessage
}

type busMessage struct {
	Subject string
	Payload []byte
}

func (b *fakeBus) Publish(_ context.Context, subject string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, busMessage{Subject: subject, Payload: payload})
	return nil
}

func (b *fakeBus) Subscribe(string, string, ports.EventHandler) error {
	return nil
}

func (b *fakeBus) countSubject(subject string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, msg := range b.published {
		if msg.Subject == subject {
			n++
		}
	}
	return n
}

type fakeModel struct {
	completeFn func(ctx context.Context, model string, prompt string) (string, error)
	embedFn    func(ctx context.Context, model string, text string) ([]float64, error)
}

func (m *fakeModel) Complete(ctx context.Context, model string, prompt string) (string, error) {
	return m.completeFn(ctx, model, prompt)
}

func (m *fakeModel) Embed(ctx context.Context, model string, text string) ([]float64, error) {
	return m.embedFn(ctx, model, text)
}

type testEnv struct {
	service *Service
	repo    *repository.JournalRepository
	bus     *fakeBus
	db      *gorm.DB
}

func (e *testEnv) countRows(t *testing.T, m any) int64 {
	t.Helper()
	var count int64
	if err := e.db.Model(m).Count(&count).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return count
}

func setupService(t *testing.T, opts Options, textModel *fakeModel) *testEnv {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "pipeline.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(
		&model.Entry{},
		&model.Insight{},
		&model.ClassifierDecision{},
		&model.Alert{},
		&model.Capsule{},
		&model.CapsuleEmbedding{},
		&model.SimilarityDecision{},
		&model.RateBucket{},
	); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	repo := repository.NewJournalRepository(db)
	bus := &fakeBus{}

	if opts.Enforcement == "" {
		opts.Enforcement = journal.EnforcementOff
	}
	if opts.ClassifierPath == "" {
		opts.ClassifierPath = classifierPathHeuristic
	}

	service := NewService(repo, uow.NewUnitOfWork(db), bus, nil, DefaultProfile(), opts)
	if textModel != nil {
		service.model = textModel
	}
	return &testEnv{service: service, repo: repo, bus: bus, db: db}
}

// fixedClock swaps the service clock for a controllable one.
func fixedClock(service *Service, start time.Time) func(d time.Duration) {
	current := start
	service.now = func() time.Time { return current }
	return func(d time.Duration) { current = current.Add(d) }
}
