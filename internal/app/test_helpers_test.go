package app

import (
	"context"
	"errors"

	"github.com/example/warden/internal/core/dispatch"
	"github.com/example/warden/internal/core/gear"
	"github.com/example/warden/internal/ports/secondary"
)

// mockStateStore implements secondary.StateStore in memory for service
// tests. Update snapshots state before running fn and restores it when
// fn errors, mirroring the transactional adapter.
type mockStateStore struct {
	ds           *secondary.DispatchStateRecord
	gs           *secondary.GearStateRecord
	junction     *secondary.JunctionRecord
	suppressions map[[2]string]*secondary.SuppressionRecord
	history      []*secondary.HistoryRecord
	stats        map[string]int
	warnings     []string

	updateErr error
}

func newMockStateStore() *mockStateStore {
	return &mockStateStore{
		suppressions: make(map[[2]string]*secondary.SuppressionRecord),
		stats:        make(map[string]int),
	}
}

func copyDispatch(rec *secondary.DispatchStateRecord) *secondary.DispatchStateRecord {
	if rec == nil {
		return nil
	}
	c := *rec
	return &c
}

func copyGear(rec *secondary.GearStateRecord) *secondary.GearStateRecord {
	if rec == nil {
		return nil
	}
	c := *rec
	return &c
}

func (m *mockStateStore) Update(ctx context.Context, fn func(tx secondary.StateTx) error) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	snapDS, snapGS := copyDispatch(m.ds), copyGear(m.gs)
	snapJunction := m.junction
	if err := fn(&mockStateTx{store: m}); err != nil {
		m.ds, m.gs, m.junction = snapDS, snapGS, snapJunction
		return err
	}
	return nil
}

func (m *mockStateStore) defaultDS() *secondary.DispatchStateRecord {
	return &secondary.DispatchStateRecord{State: string(dispatch.StateIdle), Scout: "{}"}
}

func (m *mockStateStore) defaultGS() *secondary.GearStateRecord {
	return &secondary.GearStateRecord{
		CurrentGear:    string(gear.GearDream),
		EnteredAt:      "2026-03-01T00:00:00Z",
		OverrideChecks: "[]",
	}
}

func (m *mockStateStore) GetDispatchState(ctx context.Context) (*secondary.DispatchStateRecord, error) {
	if m.ds == nil {
		return m.defaultDS(), nil
	}
	return copyDispatch(m.ds), nil
}

func (m *mockStateStore) GetGearState(ctx context.Context) (*secondary.GearStateRecord, error) {
	if m.gs == nil {
		return m.defaultGS(), nil
	}
	return copyGear(m.gs), nil
}

func (m *mockStateStore) GetJunction(ctx context.Context) (*secondary.JunctionRecord, error) {
	return m.junction, nil
}

func (m *mockStateStore) ListHistory(ctx context.Context) ([]*secondary.HistoryRecord, error) {
	return m.history, nil
}

func (m *mockStateStore) GetStats(ctx context.Context) (map[string]int, error) {
	out := make(map[string]int, len(m.stats))
	for k, v := range m.stats {
		out[k] = v
	}
	return out, nil
}

func (m *mockStateStore) Warnings() []string {
	out := m.warnings
	m.warnings = nil
	return out
}

// mockStateTx mutates the store directly; Update handles rollback.
type mockStateTx struct {
	store *mockStateStore
}

func (t *mockStateTx) DispatchState() (*secondary.DispatchStateRecord, error) {
	if t.store.ds == nil {
		return t.store.defaultDS(), nil
	}
	return copyDispatch(t.store.ds), nil
}

func (t *mockStateTx) SaveDispatchState(rec *secondary.DispatchStateRecord) error {
	t.store.ds = copyDispatch(rec)
	return nil
}

func (t *mockStateTx) GearState() (*secondary.GearStateRecord, error) {
	if t.store.gs == nil {
		return t.store.defaultGS(), nil
	}
	return copyGear(t.store.gs), nil
}

func (t *mockStateTx) SaveGearState(rec *secondary.GearStateRecord) error {
	t.store.gs = copyGear(rec)
	return nil
}

func (t *mockStateTx) Junction() (*secondary.JunctionRecord, error) {
	return t.store.junction, nil
}

func (t *mockStateTx) SetJunction(rec *secondary.JunctionRecord) error {
	if rec.CreatedAt == "" {
		rec.CreatedAt = "2026-03-01T12:00:00Z"
	}
	t.store.junction = rec
	return nil
}

func (t *mockStateTx) ClearJunction() error {
	t.store.junction = nil
	return nil
}

func (t *mockStateTx) Suppression(junctionType, reason string) (*secondary.SuppressionRecord, error) {
	return t.store.suppressions[[2]string{junctionType, reason}], nil
}

func (t *mockStateTx) SetSuppression(rec *secondary.SuppressionRecord) error {
	t.store.suppressions[[2]string{rec.Type, rec.Reason}] = rec
	return nil
}

func (t *mockStateTx) AppendHistory(rec *secondary.HistoryRecord) error {
	t.store.history = append(t.store.history, rec)
	if len(t.store.history) > dispatch.HistoryLimit {
		t.store.history = t.store.history[len(t.store.history)-dispatch.HistoryLimit:]
	}
	return nil
}

func (t *mockStateTx) IncrementStat(key string) error {
	t.store.stats[key]++
	return nil
}

func (t *mockStateTx) Reset() error {
	t.store.ds = nil
	t.store.gs = nil
	t.store.junction = nil
	t.store.suppressions = make(map[[2]string]*secondary.SuppressionRecord)
	t.store.history = nil
	t.store.stats = make(map[string]int)
	return nil
}

var _ secondary.StateStore = (*mockStateStore)(nil)
var _ secondary.StateTx = (*mockStateTx)(nil)

// mockPlanProvider implements secondary.PlanProvider for testing.
type mockPlanProvider struct {
	doc *secondary.PlanDocument
	err error
}

func (m *mockPlanProvider) Load(ctx context.Context) (*secondary.PlanDocument, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.doc == nil {
		return &secondary.PlanDocument{}, nil
	}
	return m.doc, nil
}

// mockAdvisor implements secondary.Advisor for testing.
type mockAdvisor struct {
	advisories []secondary.Advisory
	err        error
}

func (m *mockAdvisor) Name() string { return "mock" }

func (m *mockAdvisor) Review(ctx context.Context, req secondary.ActionRequest) ([]secondary.Advisory, error) {
	return m.advisories, m.err
}

// mockActionLog implements secondary.ActionLog for testing.
type mockActionLog struct {
	records   []*secondary.ActionLogRecord
	appendErr error
}

func (m *mockActionLog) Append(ctx context.Context, rec *secondary.ActionLogRecord) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *mockActionLog) Recent(ctx context.Context, limit int) ([]*secondary.ActionLogRecord, error) {
	if limit > len(m.records) {
		limit = len(m.records)
	}
	out := make([]*secondary.ActionLogRecord, 0, limit)
	for i := len(m.records) - 1; i >= len(m.records)-limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

var errMockFailure = errors.New("mock failure")
