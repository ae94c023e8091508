package services

import (
	"context"
	"errors"
	"sync"

	"spotmarket/internal/domain"
	"spotmarket/internal/domain/models"
)

type fakeAccounts struct {
	byAddress map[string][]string
	err       error
	calls     int
}

func (f *fakeAccounts) KeyAccounts(_ context.Context, address string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byAddress[address], nil
}

type fakeCredentials struct {
	key   string
	err   error
	calls int
}

func (f *fakeCredentials) Validate(context.Context, models.ListingRequest) (string, error) {
	f.calls++
	return f.key, f.err
}

type fakeNotifier struct {
	events []models.ZoneListingEvent
}

func (f *fakeNotifier) Publish(ev models.ZoneListingEvent) (int, int, error) {
	f.events = append(f.events, ev)
	return 1, 0, nil
}

type fakeOccupancy struct {
	slot models.TimeSlot
	err  error
	from int64
	to   int64
}

func (f *fakeOccupancy) FindOccupant(_ context.Context, _, _, from, to int64) (models.TimeSlot, error) {
	f.from, f.to = from, to
	return f.slot, f.err
}

type fakePlates map[string]string

func (f fakePlates) ExpectedPlate(_ context.Context, pid string) (string, error) {
	p, ok := f[pid]
	if !ok {
		return "", domain.NotFoundError{Resource: "registered plate"}
	}
	return p, nil
}

type transferCall struct {
	to, quantity, memo string
}

type fakeLedger struct {
	calls []transferCall
	errs  []error
}

func (f *fakeLedger) Transfer(_ context.Context, to, quantity, memo string) (string, error) {
	f.calls = append(f.calls, transferCall{to, quantity, memo})
	if n := len(f.calls); n <= len(f.errs) && f.errs[n-1] != nil {
		return "", f.errs[n-1]
	}
	return "tx-ok", nil
}

// memRewards mirrors RewardRepository.Claim semantics in memory.
type memRewards struct {
	mu    sync.Mutex
	byKey map[string]*models.BountyReward
}

func newMemRewards() *memRewards {
	return &memRewards{byKey: make(map[string]*models.BountyReward)}
}

func (m *memRewards) Claim(_ context.Context, rw models.BountyReward) (models.BountyReward, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.byKey[rw.DedupKey]
	if !ok {
		rw.Status = models.RewardPending
		m.byKey[rw.DedupKey] = &rw
		return rw, true, nil
	}
	switch existing.Status {
	case models.RewardIssued:
		return *existing, false, nil
	case models.RewardFailed:
		existing.Status = models.RewardPending
		existing.ReporterPID = rw.ReporterPID
		return *existing, true, nil
	}
	return models.BountyReward{}, false, domain.ConflictError{Resource: "reward"}
}

func (m *memRewards) find(id string) *models.BountyReward {
	for _, rw := range m.byKey {
		if rw.ID == id {
			return rw
		}
	}
	return nil
}

func (m *memRewards) MarkIssued(_ context.Context, id, txID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rw := m.find(id)
	if rw == nil {
		return errors.New("missing")
	}
	rw.Status = models.RewardIssued
	rw.TxID.SetValid(txID)
	return nil
}

func (m *memRewards) MarkFailed(_ context.Context, id, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rw := m.find(id)
	if rw == nil {
		return errors.New("missing")
	}
	rw.Status = models.RewardFailed
	rw.Failure.SetValid(reason)
	return nil
}

func (m *memRewards) MarkUnknown(_ context.Context, id, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rw := m.find(id)
	if rw == nil {
		return errors.New("missing")
	}
	rw.Status = models.RewardUnknown
	rw.Failure.SetValid(reason)
	return nil
}

func (m *memRewards) GetByID(_ context.Context, id string) (models.BountyReward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rw := m.find(id)
	if rw == nil {
		return models.BountyReward{}, domain.NotFoundError{Resource: "reward"}
	}
	return *rw, nil
}

func (m *memRewards) ListByReporter(_ context.Context, pid string) ([]models.BountyReward, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.BountyReward, 0)
	for _, rw := range m.byKey {
		if rw.ReporterPID == pid {
			out = append(out, *rw)
		}
	}
	return out, nil
}

type memUsers map[string]models.User

func (m memUsers) Create(_ context.Context, u models.User) error {
	if _, ok := m[u.PID]; ok {
		return domain.ConflictError{Resource: "user"}
	}
	m[u.PID] = u
	return nil
}

func (m memUsers) GetByPID(_ context.Context, pid string) (models.User, error) {
	u, ok := m[pid]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "user"}
	}
	return u, nil
}
