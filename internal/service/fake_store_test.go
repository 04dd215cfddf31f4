package service_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/snowops-contracts/internal/model"
	"github.com/nurpe/snowops-contracts/internal/repository"
)

// memStore is an in-memory repository.Store. Top level transactions and
// writes outside a transaction are serialized; a failed transaction rolls
// back to the snapshot taken when it started.
type memStore struct {
	state *memState
	inTx  bool
}

type memState struct {
	txMu sync.Mutex
	mu   sync.Mutex

	contracts  map[uuid.UUID]model.Contract
	signatures map[uuid.UUID][]model.Signature
	renewals   map[uuid.UUID]model.ContractRenewal
	failures   map[string]error
}

type memSnapshot struct {
	contracts  map[uuid.UUID]model.Contract
	signatures map[uuid.UUID][]model.Signature
	renewals   map[uuid.UUID]model.ContractRenewal
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		contracts:  make(map[uuid.UUID]model.Contract),
		signatures: make(map[uuid.UUID][]model.Signature),
		renewals:   make(map[uuid.UUID]model.ContractRenewal),
		failures:   make(map[string]error),
	}}
}

// failOn makes every later call of method return err.
func (m *memStore) failOn(method string, err error) {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	m.state.failures[method] = err
}

func (m *memStore) failure(method string) error {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	return m.state.failures[method]
}

// put stores a contract as is, bypassing every check.
func (m *memStore) put(c model.Contract) model.Contract {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	sigs := c.Signatures
	c.Signatures = nil
	m.state.contracts[c.ID] = c.Clone()
	if len(sigs) > 0 {
		for i := range sigs {
			sigs[i].ContractID = c.ID
		}
		m.state.signatures[c.ID] = append([]model.Signature(nil), sigs...)
	}
	c.Signatures = sigs
	return c
}

func (m *memStore) contract(id uuid.UUID) (model.Contract, bool) {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	c, ok := m.state.contracts[id]
	if !ok {
		return model.Contract{}, false
	}
	return m.state.withSignatures(c), true
}

func (m *memStore) allContracts() []model.Contract {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	out := make([]model.Contract, 0, len(m.state.contracts))
	for _, c := range m.state.contracts {
		out = append(out, m.state.withSignatures(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContractNumber < out[j].ContractNumber })
	return out
}

func (m *memStore) renewal(id uuid.UUID) (model.ContractRenewal, bool) {
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	r, ok := m.state.renewals[id]
	return r, ok
}

func (s *memState) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		contracts:  make(map[uuid.UUID]model.Contract, len(s.contracts)),
		signatures: make(map[uuid.UUID][]model.Signature, len(s.signatures)),
		renewals:   make(map[uuid.UUID]model.ContractRenewal, len(s.renewals)),
	}
	for id, c := range s.contracts {
		snap.contracts[id] = c.Clone()
	}
	for id, sigs := range s.signatures {
		snap.signatures[id] = append([]model.Signature(nil), sigs...)
	}
	for id, r := range s.renewals {
		snap.renewals[id] = r
	}
	return snap
}

func (s *memState) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contracts = snap.contracts
	s.signatures = snap.signatures
	s.renewals = snap.renewals
}

func (s *memState) withSignatures(c model.Contract) model.Contract {
	out := c.Clone()
	out.Signatures = append([]model.Signature{}, s.signatures[c.ID]...)
	return out
}

// write serializes a statement issued outside a transaction with the
// running transactions.
func (m *memStore) write() func() {
	if m.inTx {
		return func() {}
	}
	m.state.txMu.Lock()
	return m.state.txMu.Unlock
}

func (m *memStore) WithinTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if err := m.failure("WithinTx"); err != nil {
		return err
	}
	if !m.inTx {
		m.state.txMu.Lock()
		defer m.state.txMu.Unlock()
	}
	snap := m.state.snapshot()
	if err := fn(&memStore{state: m.state, inTx: true}); err != nil {
		m.state.restore(snap)
		return err
	}
	return nil
}

func (m *memStore) CreateContract(_ context.Context, contract *model.Contract) error {
	if err := m.failure("CreateContract"); err != nil {
		return err
	}
	defer m.write()()
	m.state.mu.Lock()
	defer m.state.mu.Unlock()

	for _, existing := range m.state.contracts {
		if existing.TenantID == contract.TenantID &&
			existing.ContractNumber == contract.ContractNumber &&
			existing.Version == contract.Version {
			return fmt.Errorf("%w: contracts_tenant_number_version_key", repository.ErrDuplicate)
		}
	}
	if contract.ID == uuid.Nil {
		contract.ID = uuid.New()
	}
	stored := contract.Clone()
	stored.Signatures = nil
	m.state.contracts[contract.ID] = stored
	return nil
}

func (m *memStore) GetContract(_ context.Context, tenantID, id uuid.UUID) (*model.Contract, error) {
	if err := m.failure("GetContract"); err != nil {
		return nil, err
	}
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	c, ok := m.state.contracts[id]
	if !ok || c.TenantID != tenantID {
		return nil, repository.ErrNotFound
	}
	out := m.state.withSignatures(c)
	return &out, nil
}

func (m *memStore) LockContract(_ context.Context, id uuid.UUID) (*model.Contract, error) {
	if err := m.failure("LockContract"); err != nil {
		return nil, err
	}
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	c, ok := m.state.contracts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := m.state.withSignatures(c)
	return &out, nil
}

func (m *memStore) UpdateContract(_ context.Context, contract *model.Contract, expected model.ContractStatus) (bool, error) {
	if err := m.failure("UpdateContract"); err != nil {
		return false, err
	}
	defer m.write()()
	m.state.mu.Lock()
	defer m.state.mu.Unlock()

	current, ok := m.state.contracts[contract.ID]
	if !ok || current.TenantID != contract.TenantID || current.Status != expected {
		return false, nil
	}
	next := contract.Clone()
	next.Signatures = nil
	next.TenantID = current.TenantID
	next.ContractNumber = current.ContractNumber
	next.Version = current.Version
	next.ParentContractID = current.ParentContractID
	next.CreatedBy = current.CreatedBy
	next.CreatedAt = current.CreatedAt
	m.state.contracts[contract.ID] = next
	return true, nil
}

func (m *memStore) LatestContractNumber(_ context.Context, tenantID uuid.UUID, prefix string) (string, error) {
	if err := m.failure("LatestContractNumber"); err != nil {
		return "", err
	}
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	latest := ""
	for _, c := range m.state.contracts {
		if c.TenantID == tenantID && strings.HasPrefix(c.ContractNumber, prefix) && c.ContractNumber > latest {
			latest = c.ContractNumber
		}
	}
	return latest, nil
}

func (m *memStore) SearchContracts(_ context.Context, filter model.ContractFilter) ([]model.Contract, int64, error) {
	if err := m.failure("SearchContracts"); err != nil {
		return nil, 0, err
	}
	m.state.mu.Lock()
	defer m.state.mu.Unlock()

	term := strings.ToLower(strings.TrimSpace(filter.SearchTerm))
	var matched []model.Contract
	for _, c := range m.state.contracts {
		if c.TenantID != filter.TenantID {
			continue
		}
		if filter.Status != "" && c.Status != filter.Status {
			continue
		}
		if filter.ContractType != "" && c.ContractType != filter.ContractType {
			continue
		}
		if filter.StartFrom != nil && c.StartDate.Before(*filter.StartFrom) {
			continue
		}
		if filter.EndUntil != nil && (c.EndDate == nil || c.EndDate.After(*filter.EndUntil)) {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(c.Title), term) &&
			!strings.Contains(strings.ToLower(c.ContractNumber), term) &&
			!strings.Contains(strings.ToLower(c.Description), term) {
			continue
		}
		matched = append(matched, m.state.withSignatures(c))
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].Version > matched[j].Version
	})

	total := int64(len(matched))
	limit, offset := repository.Page(filter.Limit, filter.Offset)
	if offset >= len(matched) {
		return []model.Contract{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *memStore) ListContracts(_ context.Context, tenantID uuid.UUID) ([]model.Contract, error) {
	if err := m.failure("ListContracts"); err != nil {
		return nil, err
	}
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	var out []model.Contract
	for _, c := range m.state.contracts {
		if c.TenantID == tenantID {
			out = append(out, m.state.withSignatures(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) CreateSignatures(_ context.Context, signatures []model.Signature) error {
	if err := m.failure("CreateSignatures"); err != nil {
		return err
	}
	defer m.write()()
	m.state.mu.Lock()
	defer m.state.mu.Unlock()

	for i := range signatures {
		for _, existing := range m.state.signatures[signatures[i].ContractID] {
			if strings.EqualFold(existing.SignerEmail, signatures[i].SignerEmail) {
				return fmt.Errorf("%w: contract_signatures_contract_email_key", repository.ErrDuplicate)
			}
		}
	}
	for i := range signatures {
		if signatures[i].ID == uuid.Nil {
			signatures[i].ID = uuid.New()
		}
		id := signatures[i].ContractID
		m.state.signatures[id] = append(m.state.signatures[id], signatures[i])
	}
	return nil
}

func (m *memStore) UpdateSignatureStatus(_ context.Context, update repository.SignatureUpdate) (bool, error) {
	if err := m.failure("UpdateSignatureStatus"); err != nil {
		return false, err
	}
	defer m.write()()
	m.state.mu.Lock()
	defer m.state.mu.Unlock()

	sigs := m.state.signatures[update.ContractID]
	for i := range sigs {
		if strings.EqualFold(sigs[i].SignerEmail, update.SignerEmail) && sigs[i].Status == model.SignatureStatusPending {
			sigs[i].Status = update.Status
			sigs[i].SignatureData = update.SignatureData
			sigs[i].SignedAt = update.SignedAt
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateRenewal(_ context.Context, renewal *model.ContractRenewal) error {
	if err := m.failure("CreateRenewal"); err != nil {
		return err
	}
	defer m.write()()
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	if renewal.ID == uuid.Nil {
		renewal.ID = uuid.New()
	}
	m.state.renewals[renewal.ID] = *renewal
	return nil
}

func (m *memStore) DueRenewals(_ context.Context, now time.Time, limit int) ([]model.ContractRenewal, error) {
	if err := m.failure("DueRenewals"); err != nil {
		return nil, err
	}
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	var due []model.ContractRenewal
	for _, r := range m.state.renewals {
		if r.Status == model.RenewalStatusScheduled && !r.ScheduledDate.After(now) {
			due = append(due, r)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledDate.Before(due[j].ScheduledDate) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (m *memStore) TransitionRenewal(_ context.Context, change repository.RenewalChange) (bool, error) {
	if err := m.failure("TransitionRenewal"); err != nil {
		return false, err
	}
	defer m.write()()
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	r, ok := m.state.renewals[change.ID]
	if !ok || r.Status != change.Expected {
		return false, nil
	}
	r.Status = change.Next
	at := change.At
	r.UpdatedAt = &at
	if change.NewContractID != nil {
		id := *change.NewContractID
		r.NewContractID = &id
	}
	m.state.renewals[change.ID] = r
	return true, nil
}

func (m *memStore) ListRenewals(_ context.Context, tenantID uuid.UUID) ([]model.ContractRenewal, error) {
	if err := m.failure("ListRenewals"); err != nil {
		return nil, err
	}
	m.state.mu.Lock()
	defer m.state.mu.Unlock()
	var out []model.ContractRenewal
	for _, r := range m.state.renewals {
		if r.TenantID == tenantID {
			out = append(out, r)
		}
	}
	return out, nil
}

// auditLog is an AuditSink that keeps every entry.
type auditLog struct {
	mu      sync.Mutex
	entries []model.AuditEntry
}

func (a *auditLog) Record(_ context.Context, entry model.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

func (a *auditLog) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.ActionType)
	}
	return out
}

func (a *auditLog) find(action string) (model.AuditEntry, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, e := range a.entries {
		if e.ActionType == action {
			return e, true
		}
	}
	return model.AuditEntry{}, false
}

type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(t time.Time) *fixedClock { return &fixedClock{now: t} }

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
