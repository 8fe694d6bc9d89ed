package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"asset-system/internal/entities"
	"asset-system/internal/integrations/static"
	intdto "asset-system/internal/integrations/dto"
	"asset-system/internal/repositories"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/types"
)

// memStore - общее хранилище для фейковых репозиториев. Репозитории возвращают копии, как настоящая БД.
type memStore struct {
	mu sync.Mutex

	seq          uint64
	assets       map[uint64]entities.Asset
	types        map[uint64]entities.AssetType
	assignments  map[uint64]entities.AssetAssignment
	maintenances map[uint64]entities.AssetMaintenance
	deps         map[uint64]entities.AssetDepreciation
	history      []entities.AssetHistory
}

func newMemStore() *memStore {
	return &memStore{
		assets:       make(map[uint64]entities.Asset),
		types:        make(map[uint64]entities.AssetType),
		assignments:  make(map[uint64]entities.AssetAssignment),
		maintenances: make(map[uint64]entities.AssetMaintenance),
		deps:         make(map[uint64]entities.AssetDepreciation),
	}
}

func (m *memStore) nextID() uint64 {
	m.seq++
	return m.seq
}

func (m *memStore) historyFor(assetID uint64) []entities.AssetHistory {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entities.AssetHistory
	for _, h := range m.history {
		if h.AssetID == assetID {
			out = append(out, h)
		}
	}
	return out
}

func (m *memStore) asset(id uint64) entities.Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assets[id]
}

// fakeTx вызывает fn без транзакции, откат не эмулируется.
type fakeTx struct{}

func (fakeTx) RunInTransaction(_ context.Context, fn func(tx pgx.Tx) error) error { return fn(nil) }
func (fakeTx) RunInSnapshot(_ context.Context, fn func(tx pgx.Tx) error) error    { return fn(nil) }

// ---- assets ----

type fakeAssetRepo struct{ s *memStore }

func (r fakeAssetRepo) Create(_ context.Context, _ pgx.Tx, a *entities.Asset) (uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.assets {
		if existing.TenantID == a.TenantID && existing.AssetCode == a.AssetCode && existing.DeletedAt == nil {
			return 0, apperrors.NewDuplicateError("asset_code", "код '%s' уже используется", a.AssetCode)
		}
	}
	a.ID = r.s.nextID()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.s.assets[a.ID] = *a
	return a.ID, nil
}

func (r fakeAssetRepo) FindByID(_ context.Context, _ pgx.Tx, id uint64) (*entities.Asset, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assets[id]
	if !ok || a.DeletedAt != nil {
		return nil, apperrors.NewNotFoundError("asset", id)
	}
	return &a, nil
}

func (r fakeAssetRepo) FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Asset, error) {
	return r.FindByID(ctx, tx, id)
}

func (r fakeAssetRepo) Update(_ context.Context, _ pgx.Tx, a *entities.Asset) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.assets[a.ID]
	if !ok {
		return apperrors.NewNotFoundError("asset", a.ID)
	}
	status := stored.Status
	stored = *a
	stored.Status = status
	stored.UpdatedAt = time.Now()
	r.s.assets[a.ID] = stored
	return nil
}

func (r fakeAssetRepo) TransitionStatus(_ context.Context, _ pgx.Tx, id uint64, from, to entities.AssetStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assets[id]
	if !ok || a.Status != from {
		return apperrors.NewConcurrencyConflictError("asset", id)
	}
	a.Status = to
	r.s.assets[id] = a
	return nil
}

func (r fakeAssetRepo) SoftDelete(_ context.Context, _ pgx.Tx, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a := r.s.assets[id]
	now := time.Now()
	a.DeletedAt = &now
	r.s.assets[id] = a
	return nil
}

func (r fakeAssetRepo) List(_ context.Context, tenantID uint64, filter types.Filter) ([]entities.Asset, uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entities.Asset
	for _, a := range r.s.assets {
		if a.TenantID != tenantID || a.DeletedAt != nil {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(a.Name), strings.ToLower(filter.Search)) {
			continue
		}
		if d, ok := r.s.deps[a.ID]; ok {
			v := d.CurrentValue
			a.CurrentValue = &v
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, uint64(len(out)), nil
}

func (r fakeAssetRepo) ExistsWithType(_ context.Context, typeID uint64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.assets {
		if a.AssetTypeID == typeID {
			return true, nil
		}
	}
	return false, nil
}

// ---- asset types ----

type fakeAssetTypeRepo struct{ s *memStore }

func (r fakeAssetTypeRepo) GetAssetTypes(_ context.Context, _ types.Filter) ([]entities.AssetType, uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]entities.AssetType, 0, len(r.s.types))
	for _, t := range r.s.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, uint64(len(out)), nil
}

func (r fakeAssetTypeRepo) FindAssetType(_ context.Context, id uint64) (*entities.AssetType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.types[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("asset_type", id)
	}
	return &t, nil
}

func (r fakeAssetTypeRepo) FindByName(_ context.Context, _ pgx.Tx, name string) (*entities.AssetType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.types {
		if strings.EqualFold(t.Name, name) {
			return &t, nil
		}
	}
	return nil, nil
}

func (r fakeAssetTypeRepo) CreateAssetType(_ context.Context, _ pgx.Tx, t *entities.AssetType) (uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.types {
		if strings.EqualFold(existing.Name, t.Name) {
			return 0, apperrors.NewValidationError("name", "тип '%s' уже существует", t.Name)
		}
	}
	t.ID = r.s.nextID()
	r.s.types[t.ID] = *t
	return t.ID, nil
}

func (r fakeAssetTypeRepo) UpdateAssetType(_ context.Context, t *entities.AssetType) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.types[t.ID]; !ok {
		return apperrors.NewNotFoundError("asset_type", t.ID)
	}
	r.s.types[t.ID] = *t
	return nil
}

func (r fakeAssetTypeRepo) DeleteAssetType(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.types[id]; !ok {
		return apperrors.NewNotFoundError("asset_type", id)
	}
	delete(r.s.types, id)
	return nil
}

// ---- assignments ----

type fakeAssignmentRepo struct{ s *memStore }

func (r fakeAssignmentRepo) Create(_ context.Context, _ pgx.Tx, a *entities.AssetAssignment) (uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.assignments {
		if existing.AssetID == a.AssetID && existing.IsOpen() {
			return 0, apperrors.NewConcurrencyConflictError("asset", a.AssetID)
		}
	}
	a.ID = r.s.nextID()
	r.s.assignments[a.ID] = *a
	return a.ID, nil
}

func (r fakeAssignmentRepo) FindByID(_ context.Context, _ pgx.Tx, id uint64) (*entities.AssetAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("assignment", id)
	}
	return &a, nil
}

func (r fakeAssignmentRepo) FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.AssetAssignment, error) {
	return r.FindByID(ctx, tx, id)
}

func (r fakeAssignmentRepo) FindOpenByAsset(_ context.Context, _ pgx.Tx, assetID uint64) (*entities.AssetAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.assignments {
		if a.AssetID == assetID && a.IsOpen() {
			return &a, nil
		}
	}
	return nil, nil
}

func (r fakeAssignmentRepo) Close(_ context.Context, _ pgx.Tx, a *entities.AssetAssignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.assignments[a.ID]
	if !ok || !stored.IsOpen() {
		return apperrors.NewConcurrencyConflictError("assignment", a.ID)
	}
	r.s.assignments[a.ID] = *a
	return nil
}

func (r fakeAssignmentRepo) filter(keep func(entities.AssetAssignment) bool) []entities.AssetAssignment {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entities.AssetAssignment
	for _, a := range r.s.assignments {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r fakeAssignmentRepo) ListByAsset(_ context.Context, _ pgx.Tx, assetID uint64) ([]entities.AssetAssignment, error) {
	return r.filter(func(a entities.AssetAssignment) bool { return a.AssetID == assetID }), nil
}

func (r fakeAssignmentRepo) ListOpenByEmployee(_ context.Context, tenantID, employeeID uint64) ([]entities.AssetAssignment, error) {
	return r.filter(func(a entities.AssetAssignment) bool {
		return a.EmployeeID == employeeID && a.IsOpen() && r.s.assets[a.AssetID].TenantID == tenantID
	}), nil
}

func (r fakeAssignmentRepo) ListOverdue(_ context.Context, tenantID uint64, asOf time.Time) ([]entities.AssetAssignment, error) {
	return r.filter(func(a entities.AssetAssignment) bool {
		return a.IsOverdue(asOf) && r.s.assets[a.AssetID].TenantID == tenantID
	}), nil
}

// ---- maintenance ----

type fakeMaintenanceRepo struct{ s *memStore }

func (r fakeMaintenanceRepo) Create(_ context.Context, _ pgx.Tx, m *entities.AssetMaintenance) (uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.maintenances {
		if existing.AssetID == m.AssetID && existing.Status.IsActive() {
			return 0, apperrors.NewConcurrencyConflictError("asset", m.AssetID)
		}
	}
	m.ID = r.s.nextID()
	r.s.maintenances[m.ID] = *m
	return m.ID, nil
}

func (r fakeMaintenanceRepo) FindByID(_ context.Context, _ pgx.Tx, id uint64) (*entities.AssetMaintenance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.maintenances[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("maintenance", id)
	}
	return &m, nil
}

func (r fakeMaintenanceRepo) FindForUpdate(ctx context.Context, tx pgx.Tx, id uint64) (*entities.AssetMaintenance, error) {
	return r.FindByID(ctx, tx, id)
}

func (r fakeMaintenanceRepo) FindActiveByAsset(_ context.Context, _ pgx.Tx, assetID uint64) (*entities.AssetMaintenance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, m := range r.s.maintenances {
		if m.AssetID == assetID && m.Status.IsActive() {
			return &m, nil
		}
	}
	return nil, nil
}

func (r fakeMaintenanceRepo) UpdateStatus(_ context.Context, _ pgx.Tx, m *entities.AssetMaintenance, from entities.MaintenanceStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.maintenances[m.ID]
	if !ok || stored.Status != from {
		return apperrors.NewConcurrencyConflictError("maintenance", m.ID)
	}
	r.s.maintenances[m.ID] = *m
	return nil
}

func (r fakeMaintenanceRepo) ListByAsset(_ context.Context, _ pgx.Tx, assetID uint64) ([]entities.AssetMaintenance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entities.AssetMaintenance
	for _, m := range r.s.maintenances {
		if m.AssetID == assetID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r fakeMaintenanceRepo) ListUpcoming(_ context.Context, _ pgx.Tx, tenantID uint64, from, to time.Time) ([]entities.UpcomingMaintenance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entities.UpcomingMaintenance
	for _, m := range r.s.maintenances {
		a := r.s.assets[m.AssetID]
		if a.TenantID != tenantID || m.Status != entities.MaintenanceScheduled {
			continue
		}
		if m.StartDate.Before(from) || m.StartDate.After(to) {
			continue
		}
		out = append(out, entities.UpcomingMaintenance{
			MaintenanceID: m.ID, AssetID: a.ID, AssetName: a.Name,
			MaintenanceType: m.MaintenanceType, StartDate: m.StartDate,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

// ---- depreciation ----

type fakeDepreciationRepo struct{ s *memStore }

func (r fakeDepreciationRepo) FindByAsset(_ context.Context, _ pgx.Tx, assetID uint64) (*entities.AssetDepreciation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.deps[assetID]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r fakeDepreciationRepo) Upsert(_ context.Context, _ pgx.Tx, d *entities.AssetDepreciation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d.UpdatedAt = time.Now()
	r.s.deps[d.AssetID] = *d
	return nil
}

func (r fakeDepreciationRepo) UpdateValue(_ context.Context, _ pgx.Tx, assetID uint64, value decimal.Decimal, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.deps[assetID]
	if !ok || !d.LastCalculatedDate.Before(at) {
		return nil
	}
	d.CurrentValue = value
	d.LastCalculatedDate = at
	r.s.deps[assetID] = d
	return nil
}

func (r fakeDepreciationRepo) Delete(_ context.Context, _ pgx.Tx, assetID uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.deps, assetID)
	return nil
}

func (r fakeDepreciationRepo) ListDue(_ context.Context, asOf time.Time, limit int) ([]repositories.DueDepreciation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []repositories.DueDepreciation
	for id, d := range r.s.deps {
		a := r.s.assets[id]
		if !d.LastCalculatedDate.Before(asOf) || a.IsDisposed() || a.DeletedAt != nil {
			continue
		}
		out = append(out, repositories.DueDepreciation{
			AssetDepreciation: d, TenantID: a.TenantID, PurchaseCost: a.PurchaseCost, PurchaseDate: a.PurchaseDate,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AssetID < out[j].AssetID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- history ----

type fakeHistoryRepo struct{ s *memStore }

func (r fakeHistoryRepo) CreateInTx(_ context.Context, _ pgx.Tx, h *entities.AssetHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h.ID = r.s.nextID()
	h.CreatedAt = time.Now()
	r.s.history = append(r.s.history, *h)
	return nil
}

func (r fakeHistoryRepo) FindByAssetID(_ context.Context, assetID uint64, limit, offset int) ([]entities.AssetHistory, uint64, error) {
	all := r.s.historyFor(assetID)
	total := uint64(len(all))
	if offset >= len(all) {
		return []entities.AssetHistory{}, total, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

// ---- cache ----

type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", repositories.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = string(b)
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *fakeCache) GetJSON(ctx context.Context, key string, dest interface{}) error {
	v, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(v), dest)
}

func (c *fakeCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.Set(ctx, key, value, ttl)
}

func (c *fakeCache) DelByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

// ---- fixture ----

var (
	testActor  = types.Actor{UserID: 7, TenantID: 1}
	otherActor = types.Actor{UserID: 9, TenantID: 2}
	fixedNow   = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
)

type fixture struct {
	store       *memStore
	assets      *AssetService
	assignments *AssignmentService
	maintenance *MaintenanceService
	typeID      uint64
}

func newFixture() *fixture {
	store := newMemStore()
	logger := zap.NewNop()
	employees := static.New(
		intdto.EmployeeDTO{ID: 100, FullName: "Иванов И.И.", IsActive: true},
		intdto.EmployeeDTO{ID: 101, FullName: "Петров П.П.", IsActive: true},
		intdto.EmployeeDTO{ID: 102, FullName: "Сидоров С.С.", IsActive: false},
	)

	assetRepo := fakeAssetRepo{store}
	typeRepo := fakeAssetTypeRepo{store}
	assignmentRepo := fakeAssignmentRepo{store}
	maintenanceRepo := fakeMaintenanceRepo{store}
	depRepo := fakeDepreciationRepo{store}
	historyRepo := fakeHistoryRepo{store}

	assets := NewAssetService(fakeTx{}, assetRepo, typeRepo, assignmentRepo, maintenanceRepo, depRepo, historyRepo,
		nil, nil, employees, nil, 2, logger)
	assets.now = func() time.Time { return fixedNow }

	assignments := NewAssignmentService(fakeTx{}, assetRepo, assignmentRepo, maintenanceRepo, historyRepo, employees, nil, logger)
	assignments.now = func() time.Time { return fixedNow }

	maintenance := NewMaintenanceService(fakeTx{}, assetRepo, assignmentRepo, maintenanceRepo, historyRepo, nil, 30, logger)
	maintenance.now = func() time.Time { return fixedNow }

	laptop := &entities.AssetType{Name: "Ноутбук"}
	_, _ = typeRepo.CreateAssetType(context.Background(), nil, laptop)

	return &fixture{
		store:       store,
		assets:      assets,
		assignments: assignments,
		maintenance: maintenance,
		typeID:      laptop.ID,
	}
}
