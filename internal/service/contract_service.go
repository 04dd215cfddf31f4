package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nurpe/snowops-contracts/internal/config"
	"github.com/nurpe/snowops-contracts/internal/lifecycle"
	"github.com/nurpe/snowops-contracts/internal/model"
	"github.com/nurpe/snowops-contracts/internal/numbering"
	"github.com/nurpe/snowops-contracts/internal/repository"
)

const defaultNumberAttempts = 10

type ContractService struct {
	store repository.Store
	audit auditor
	clock Clock
	cfg   config.ContractsConfig
	log   zerolog.Logger
}

type CreateContractInput struct {
	Principal         model.Principal
	Title             string
	Description       string
	ContractType      model.ContractType
	ContractorID      uuid.UUID
	ContracteeID      uuid.UUID
	StartDate         time.Time
	EndDate           *time.Time
	TotalValue        decimal.Decimal
	Currency          string
	PaymentTerms      model.PaymentTerms
	AutoRenewal       bool
	RenewalPeriod     *model.RenewalPeriod
	RenewalNoticeDays *int
	Metadata          map[string]any
	Tags              []string
}

type UpdateContractInput struct {
	Principal  model.Principal
	ContractID uuid.UUID
	Changes    ContractChanges
}

type TransitionInput struct {
	Principal  model.Principal
	ContractID uuid.UUID
	Status     model.ContractStatus
}

type ContractDetails struct {
	Contract model.Contract        `json:"contract"`
	Progress model.SigningProgress `json:"signing_progress"`
}

type SearchResult struct {
	Items  []model.Contract `json:"items"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

func NewContractService(store repository.Store, audit AuditSink, clock Clock, cfg config.ContractsConfig, log zerolog.Logger) *ContractService {
	if clock == nil {
		clock = SystemClock()
	}
	if cfg.NumberMaxAttempts < 1 {
		cfg.NumberMaxAttempts = defaultNumberAttempts
	}
	return &ContractService{
		store: store,
		audit: auditor{sink: audit, clock: clock, log: log},
		clock: clock,
		cfg:   cfg,
		log:   log,
	}
}

func (s *ContractService) Create(ctx context.Context, input CreateContractInput) (*model.Contract, error) {
	if !input.Principal.CanWrite() {
		return nil, ErrPermissionDenied
	}

	now := s.clock.Now()
	contract := &model.Contract{
		TenantID:          input.Principal.TenantID,
		Version:           1,
		Title:             strings.TrimSpace(input.Title),
		Description:       input.Description,
		ContractType:      input.ContractType,
		ContractorID:      input.ContractorID,
		ContracteeID:      input.ContracteeID,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		TotalValue:        input.TotalValue,
		Currency:          strings.ToUpper(strings.TrimSpace(input.Currency)),
		PaymentTerms:      input.PaymentTerms,
		AutoRenewal:       input.AutoRenewal,
		RenewalPeriod:     input.RenewalPeriod,
		RenewalNoticeDays: input.RenewalNoticeDays,
		Status:            model.ContractStatusDraft,
		Signatures:        []model.Signature{},
		Metadata:          input.Metadata,
		Tags:              normalizeTags(input.Tags),
		CreatedBy:         input.Principal.UserID,
		CreatedAt:         now,
	}
	if contract.Currency == "" {
		contract.Currency = defaultCurrency
	}
	if contract.Metadata == nil {
		contract.Metadata = map[string]any{}
	}
	if err := validateContract(contract); err != nil {
		return nil, err
	}

	if err := createNumbered(ctx, s.store, contract, now, s.cfg.NumberMaxAttempts); err != nil {
		return nil, err
	}

	entry := contractEntry(contract, input.Principal.UserID, model.AuditActionCreate, model.RiskLevelMedium)
	entry.NewValues = contractSnapshot(contract)
	s.audit.record(ctx, entry)

	s.log.Info().
		Str("contract_id", contract.ID.String()).
		Str("tenant_id", contract.TenantID.String()).
		Str("contract_number", contract.ContractNumber).
		Msg("contract created")
	return contract, nil
}

// createNumbered assigns a fresh contract number and inserts the contract,
// asking for a new number each time the unique index rejects the insert.
// Every attempt runs in its own (sub)transaction so a rejected insert does
// not poison an enclosing transaction.
func createNumbered(ctx context.Context, store repository.Store, contract *model.Contract, now time.Time, maxAttempts int) error {
	generator := numbering.NewGenerator(store)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		number, err := generator.Next(ctx, contract.TenantID, now)
		if err != nil {
			if errors.Is(err, numbering.ErrSequenceExhausted) {
				return fmt.Errorf("%w: %v", ErrConflict, err)
			}
			return dependencyError("generate contract number", err)
		}
		contract.ContractNumber = number

		err = store.WithinTx(ctx, func(tx repository.Store) error {
			return tx.CreateContract(ctx, contract)
		})
		if err == nil {
			return nil
		}
		if errors.Is(err, repository.ErrDuplicate) {
			contract.ID = uuid.Nil
			continue
		}
		return storeError("create contract", err)
	}
	return fmt.Errorf("%w: could not allocate a contract number after %d attempts", ErrConflict, maxAttempts)
}

func (s *ContractService) Update(ctx context.Context, input UpdateContractInput) (*model.Contract, error) {
	if !input.Principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	if input.Changes.empty() {
		return nil, validationError("no changes supplied")
	}

	var before, after model.Contract
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		current, err := lockTenantContract(ctx, tx, input.Principal.TenantID, input.ContractID)
		if err != nil {
			return err
		}
		if !lifecycle.IsMutable(current.Status) {
			return fmt.Errorf("%w: status %s", ErrContractImmutable, current.Status)
		}

		before = current.Clone()
		after = current.Clone()
		input.Changes.apply(&after)
		if err := validateContract(&after); err != nil {
			return err
		}

		now := s.clock.Now()
		actor := input.Principal.UserID
		after.UpdatedBy = &actor
		after.UpdatedAt = &now

		ok, err := tx.UpdateContract(ctx, &after, before.Status)
		if err != nil {
			return storeError("update contract", err)
		}
		if !ok {
			return fmt.Errorf("%w: contract %s changed concurrently", ErrConflict, after.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	entry := contractEntry(&after, input.Principal.UserID, model.AuditActionUpdate, model.RiskLevelMedium)
	entry.OldValues = contractSnapshot(&before)
	entry.NewValues = contractSnapshot(&after)
	s.audit.record(ctx, entry)

	s.log.Info().
		Str("contract_id", after.ID.String()).
		Str("tenant_id", after.TenantID.String()).
		Msg("contract updated")
	return &after, nil
}

func (s *ContractService) Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*ContractDetails, error) {
	contract, err := s.store.GetContract(ctx, principal.TenantID, id)
	if err != nil {
		return nil, storeError("get contract", err)
	}
	return &ContractDetails{
		Contract: *contract,
		Progress: model.Progress(contract.Signatures),
	}, nil
}

// Transition applies a manual lifecycle move. Activation of a contract
// awaiting signatures is reserved to signature reconciliation.
func (s *ContractService) Transition(ctx context.Context, input TransitionInput) (*model.Contract, error) {
	if !input.Principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	if !input.Status.Valid() {
		return nil, validationError("invalid status %q", input.Status)
	}

	var from model.ContractStatus
	var contract model.Contract
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		current, err := lockTenantContract(ctx, tx, input.Principal.TenantID, input.ContractID)
		if err != nil {
			return err
		}
		from = current.Status
		if !lifecycle.CanTransitionManually(from, input.Status) {
			return transitionError(from, input.Status)
		}

		contract = current.Clone()
		now := s.clock.Now()
		actor := input.Principal.UserID
		contract.Status = input.Status
		contract.UpdatedBy = &actor
		contract.UpdatedAt = &now

		ok, err := tx.UpdateContract(ctx, &contract, from)
		if err != nil {
			return storeError("transition contract", err)
		}
		if !ok {
			return fmt.Errorf("%w: contract %s changed concurrently", ErrConflict, contract.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	action, risk := model.AuditActionStatusChanged, model.RiskLevelMedium
	if input.Status == model.ContractStatusTerminated {
		action, risk = model.AuditActionContractTerminated, model.RiskLevelHigh
	}
	entry := contractEntry(&contract, input.Principal.UserID, action, risk)
	entry.OldValues = map[string]any{"status": string(from)}
	entry.NewValues = map[string]any{"status": string(contract.Status)}
	s.audit.record(ctx, entry)

	s.log.Info().
		Str("contract_id", contract.ID.String()).
		Str("tenant_id", contract.TenantID.String()).
		Str("from", string(from)).
		Str("status", string(contract.Status)).
		Msg("contract status changed")
	return &contract, nil
}

func (s *ContractService) Search(ctx context.Context, principal model.Principal, filter model.ContractFilter) (*SearchResult, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, validationError("invalid status %q", filter.Status)
	}
	if filter.ContractType != "" && !filter.ContractType.Valid() {
		return nil, validationError("invalid contract_type %q", filter.ContractType)
	}
	if filter.StartFrom != nil && filter.EndUntil != nil && filter.EndUntil.Before(*filter.StartFrom) {
		return nil, validationError("end_until must not be before start_from")
	}
	filter.TenantID = principal.TenantID
	filter.Limit, filter.Offset = repository.Page(filter.Limit, filter.Offset)

	items, total, err := s.store.SearchContracts(ctx, filter)
	if err != nil {
		return nil, dependencyError("search contracts", err)
	}
	return &SearchResult{
		Items:  items,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// History returns the version chain ending at id, newest first.
func (s *ContractService) History(ctx context.Context, principal model.Principal, id uuid.UUID) ([]model.Contract, error) {
	var chain []model.Contract
	seen := make(map[uuid.UUID]struct{})
	next := &id
	for next != nil {
		if _, loop := seen[*next]; loop {
			break
		}
		seen[*next] = struct{}{}

		contract, err := s.store.GetContract(ctx, principal.TenantID, *next)
		if err != nil {
			if len(chain) > 0 && errors.Is(err, repository.ErrNotFound) {
				break
			}
			return nil, storeError("load contract version", err)
		}
		chain = append(chain, *contract)
		next = contract.ParentContractID
	}
	return chain, nil
}

// lockTenantContract locks the row and hides contracts of other tenants.
func lockTenantContract(ctx context.Context, tx repository.Store, tenantID, id uuid.UUID) (*model.Contract, error) {
	contract, err := tx.LockContract(ctx, id)
	if err != nil {
		return nil, storeError("lock contract", err)
	}
	if contract.TenantID != tenantID {
		return nil, fmt.Errorf("%w: lock contract", ErrNotFound)
	}
	return contract, nil
}

func transitionError(from, to model.ContractStatus) error {
	if lifecycle.IsTerminal(from) {
		return fmt.Errorf("%w: contract is %s, a terminal status", ErrInvalidState, from)
	}
	var allowed []string
	for _, next := range lifecycle.Next(from) {
		if lifecycle.CanTransitionManually(from, next) {
			allowed = append(allowed, string(next))
		}
	}
	if len(allowed) == 0 {
		return fmt.Errorf("%w: %s -> %s, the status only changes once every signature is collected", ErrInvalidState, from, to)
	}
	return fmt.Errorf("%w: %s -> %s, allowed: %s", ErrInvalidState, from, to, strings.Join(allowed, ", "))
}
