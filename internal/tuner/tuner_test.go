package tuner

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/Northlight-Systems/Vigil/internal/ensemble"
	"github.com/Northlight-Systems/Vigil/internal/pulse"
	"github.com/Northlight-Systems/Vigil/internal/store"
)

// Mock implementations

type mockStore struct {
	evaluations []ensemble.EvaluationRecord
	history     []*store.WeightHistoryRow
}

func (m *mockStore) RecentEvaluations(_ context.Context, limit int) ([]ensemble.EvaluationRecord, error) {
	if limit > len(m.evaluations) {
		limit = len(m.evaluations)
	}
	return m.evaluations[:limit], nil
}
func (m *mockStore) CreateEvaluation(_ context.Context, _ *store.EvaluationRecord) error { return nil }
func (m *mockStore) ListEvaluations(_ context.Context, _ int) ([]*store.EvaluationRecord, error) {
	return nil, nil
}
func (m *mockStore) CreateWeightHistory(_ context.Context, row *store.WeightHistoryRow) error {
	m.history = append(m.history, row)
	return nil
}
func (m *mockStore) ListWeightHistory(_ context.Context, _ int) ([]*store.WeightHistoryRow, error) {
	return m.history, nil
}
func (m *mockStore) GetStats(_ context.Context) (*store.EngineStats, error) {
	return &store.EngineStats{}, nil
}
func (m *mockStore) Close() error { return nil }

type mockPulse struct {
	published []string
}

func (m *mockPulse) Publish(subject string, _ interface{}) error {
	m.published = append(m.published, subject)
	return nil
}
func (m *mockPulse) Subscribe(_ string, _ func(string, []byte)) error { return nil }
func (m *mockPulse) Close()                                           {}

var _ pulse.Client = (*mockPulse)(nil)
var _ store.Store = (*mockStore)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestTuner(s *mockStore, p pulse.Client) *Tuner {
	engine := ensemble.New(ensemble.Config{}, s, nil, discardLogger())
	return New(engine, s, p, time.Minute, discardLogger())
}

func TestRunOncePersistsHistory(t *testing.T) {
	s := &mockStore{evaluations: []ensemble.EvaluationRecord{
		{Accuracy: 0.9, CalibrationError: 0.05, F1Score: 0.85},
		{Accuracy: 0.88, CalibrationError: 0.07, F1Score: 0.82},
	}}
	tn := newTestTuner(s, &mockPulse{})

	tn.RunOnce(context.Background())

	if len(s.history) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(s.history))
	}
	row := s.history[0]
	sum := row.RuleBased + row.AnomalyModel + row.Projection + row.Interaction
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("persisted weights should sum to 1, got %f", sum)
	}
	if row.Reason == "" {
		t.Error("expected a non-empty reason")
	}
}

func TestRunOncePublishesEvent(t *testing.T) {
	p := &mockPulse{}
	tn := newTestTuner(&mockStore{}, p)

	tn.RunOnce(context.Background())

	if len(p.published) != 1 || p.published[0] != pulse.SubjectWeightsAdapted {
		t.Errorf("expected one %s event, got %v", pulse.SubjectWeightsAdapted, p.published)
	}
}

func TestRunOnceWithoutPulse(t *testing.T) {
	s := &mockStore{}
	tn := newTestTuner(s, nil)

	// must not panic with no event bus configured
	tn.RunOnce(context.Background())

	if len(s.history) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(s.history))
	}
}

func TestStartStop(t *testing.T) {
	tn := newTestTuner(&mockStore{}, &mockPulse{})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tn.Start(ctx)
	tn.Stop()
	// Stop is idempotent
	tn.Stop()
}
