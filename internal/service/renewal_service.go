package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/nurpe/snowops-contracts/internal/config"
	"github.com/nurpe/snowops-contracts/internal/lifecycle"
	"github.com/nurpe/snowops-contracts/internal/model"
	"github.com/nurpe/snowops-contracts/internal/repository"
)

const (
	schedulerActor        = "renewal-scheduler"
	metadataRenewedFrom   = "renewed_from"
	metadataRenewalID     = "renewal_id"
	defaultRenewalBatch   = 500
	defaultRenewalWorkers = 1
)

var errRenewalClaimed = errors.New("renewal already claimed")

type RenewalService struct {
	store repository.Store
	audit auditor
	clock Clock
	cfg   config.ContractsConfig
	log   zerolog.Logger
}

type ScheduleRenewalInput struct {
	Principal     model.Principal
	ContractID    uuid.UUID
	ScheduledDate time.Time
	RenewalType   model.RenewalType
	TermsChanged  bool
	ChangeSummary string
}

type renewalResult int

const (
	renewalCompleted renewalResult = iota
	renewalRejected
	renewalFailed
	renewalSkipped
)

func NewRenewalService(store repository.Store, audit AuditSink, clock Clock, cfg config.ContractsConfig, log zerolog.Logger) *RenewalService {
	if clock == nil {
		clock = SystemClock()
	}
	if cfg.NumberMaxAttempts < 1 {
		cfg.NumberMaxAttempts = defaultNumberAttempts
	}
	if cfg.RenewalWorkers < 1 {
		cfg.RenewalWorkers = defaultRenewalWorkers
	}
	if cfg.RenewalBatchSize < 1 {
		cfg.RenewalBatchSize = defaultRenewalBatch
	}
	return &RenewalService{
		store: store,
		audit: auditor{sink: audit, clock: clock, log: log},
		clock: clock,
		cfg:   cfg,
		log:   log,
	}
}

// ScheduleRenewal records a future renewal. The contract itself is not touched.
func (s *RenewalService) ScheduleRenewal(ctx context.Context, input ScheduleRenewalInput) (*model.ContractRenewal, error) {
	if !input.Principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	if input.ScheduledDate.IsZero() {
		return nil, validationError("renewal_date is required")
	}
	if input.RenewalType == "" {
		input.RenewalType = model.RenewalTypeAutomatic
	}
	if !input.RenewalType.Valid() {
		return nil, validationError("invalid renewal_type %q", input.RenewalType)
	}

	contract, err := s.store.GetContract(ctx, input.Principal.TenantID, input.ContractID)
	if err != nil {
		return nil, storeError("load contract", err)
	}

	renewal := &model.ContractRenewal{
		TenantID:           contract.TenantID,
		OriginalContractID: contract.ID,
		RenewalType:        input.RenewalType,
		ScheduledDate:      input.ScheduledDate,
		Status:             model.RenewalStatusScheduled,
		TermsChanged:       input.TermsChanged,
		ChangeSummary:      input.ChangeSummary,
		CreatedBy:          input.Principal.UserID,
		CreatedAt:          s.clock.Now(),
	}
	if err := s.store.CreateRenewal(ctx, renewal); err != nil {
		return nil, storeError("create renewal", err)
	}

	s.audit.record(ctx, model.AuditEntry{
		TenantID:   renewal.TenantID,
		UserID:     input.Principal.UserID,
		ActionType: model.AuditActionRenewalScheduled,
		EntityType: model.AuditEntityRenewal,
		EntityID:   renewal.ID,
		NewValues: map[string]any{
			"original_contract_id": contract.ID.String(),
			"scheduled_date":       renewal.ScheduledDate,
			"renewal_type":         string(renewal.RenewalType),
		},
		RiskLevel: model.RiskLevelMedium,
	})

	s.log.Info().
		Str("renewal_id", renewal.ID.String()).
		Str("contract_id", contract.ID.String()).
		Str("tenant_id", renewal.TenantID.String()).
		Time("scheduled_date", renewal.ScheduledDate).
		Msg("renewal scheduled")
	return renewal, nil
}

// ProcessPendingRenewals consumes every due renewal. A failing renewal is
// marked FAILED and never stops the others. Safe to run concurrently with
// itself: a renewal claimed by another run is counted as skipped.
func (s *RenewalService) ProcessPendingRenewals(ctx context.Context) (*model.RenewalRunSummary, error) {
	now := s.clock.Now()
	due, err := s.store.DueRenewals(ctx, now, s.cfg.RenewalBatchSize)
	if err != nil {
		return nil, dependencyError("load due renewals", err)
	}

	var (
		mu      sync.Mutex
		summary model.RenewalRunSummary
	)
	var g errgroup.Group
	g.SetLimit(s.cfg.RenewalWorkers)
	for _, renewal := range due {
		g.Go(func() error {
			result := s.processRenewal(ctx, renewal, now)

			mu.Lock()
			defer mu.Unlock()
			summary.Processed++
			switch result {
			case renewalCompleted:
				summary.Completed++
			case renewalRejected:
				summary.Rejected++
			case renewalFailed:
				summary.Failed++
			case renewalSkipped:
				summary.Skipped++
			}
			return nil
		})
	}
	_ = g.Wait()

	s.log.Info().
		Int("processed", summary.Processed).
		Int("completed", summary.Completed).
		Int("rejected", summary.Rejected).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("renewal run finished")
	return &summary, nil
}

func (s *RenewalService) processRenewal(ctx context.Context, renewal model.ContractRenewal, now time.Time) renewalResult {
	logger := s.log.With().
		Str("renewal_id", renewal.ID.String()).
		Str("contract_id", renewal.OriginalContractID.String()).
		Str("tenant_id", renewal.TenantID.String()).
		Logger()

	original, err := s.store.GetContract(ctx, renewal.TenantID, renewal.OriginalContractID)
	if err != nil {
		return s.fail(ctx, logger, renewal, now, storeError("load original contract", err))
	}

	if !original.AutoRenewal {
		ok, err := s.store.TransitionRenewal(ctx, repository.RenewalChange{
			ID:       renewal.ID,
			Expected: model.RenewalStatusScheduled,
			Next:     model.RenewalStatusRejected,
			At:       now,
		})
		if err != nil {
			return s.fail(ctx, logger, renewal, now, dependencyError("reject renewal", err))
		}
		if !ok {
			return renewalSkipped
		}
		s.recordRenewal(ctx, renewal, model.RenewalStatusRejected, nil, "auto_renewal disabled")
		logger.Info().Msg("renewal rejected, auto renewal disabled")
		return renewalRejected
	}

	var successor, terminated model.Contract
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		current, err := tx.LockContract(ctx, original.ID)
		if err != nil {
			return storeError("lock original contract", err)
		}
		if !lifecycle.CanTransition(current.Status, model.ContractStatusTerminated) {
			return fmt.Errorf("%w: cannot terminate contract in status %s", ErrInvalidState, current.Status)
		}

		successor = renewSuccessor(*current, renewal, now)
		if err := createNumbered(ctx, tx, &successor, now, s.cfg.NumberMaxAttempts); err != nil {
			return err
		}

		newID := successor.ID
		ok, err := tx.TransitionRenewal(ctx, repository.RenewalChange{
			ID:            renewal.ID,
			Expected:      model.RenewalStatusScheduled,
			Next:          model.RenewalStatusCompleted,
			NewContractID: &newID,
			At:            now,
		})
		if err != nil {
			return dependencyError("complete renewal", err)
		}
		if !ok {
			return errRenewalClaimed
		}

		terminated = current.Clone()
		terminated.Status = model.ContractStatusTerminated
		terminated.UpdatedAt = &now
		ok, err = tx.UpdateContract(ctx, &terminated, current.Status)
		if err != nil {
			return storeError("terminate original contract", err)
		}
		if !ok {
			return fmt.Errorf("%w: contract %s changed concurrently", ErrConflict, current.ID)
		}

		if next := termRenewal(successor, now); next != nil {
			if err := tx.CreateRenewal(ctx, next); err != nil {
				return storeError("schedule next renewal", err)
			}
		}
		return nil
	})
	if errors.Is(err, errRenewalClaimed) {
		logger.Info().Msg("renewal already processed by another run")
		return renewalSkipped
	}
	if err != nil {
		return s.fail(ctx, logger, renewal, now, err)
	}

	s.recordRenewal(ctx, renewal, model.RenewalStatusCompleted, &successor.ID, "")
	entry := contractEntry(&terminated, uuid.Nil, model.AuditActionContractTerminated, model.RiskLevelHigh)
	entry.OldValues = map[string]any{"status": string(original.Status)}
	entry.NewValues = map[string]any{"status": string(terminated.Status)}
	entry.Metadata = map[string]any{
		"actor":           schedulerActor,
		"renewal_id":      renewal.ID.String(),
		"new_contract_id": successor.ID.String(),
	}
	s.audit.record(ctx, entry)

	logger.Info().
		Str("new_contract_id", successor.ID.String()).
		Str("contract_number", successor.ContractNumber).
		Msg("contract renewed")
	return renewalCompleted
}

func (s *RenewalService) fail(ctx context.Context, logger zerolog.Logger, renewal model.ContractRenewal, now time.Time, cause error) renewalResult {
	logger.Error().Err(cause).Msg("renewal failed")
	ok, err := s.store.TransitionRenewal(ctx, repository.RenewalChange{
		ID:       renewal.ID,
		Expected: model.RenewalStatusScheduled,
		Next:     model.RenewalStatusFailed,
		At:       now,
	})
	if err != nil {
		logger.Error().Err(err).Msg("could not mark renewal failed")
		return renewalFailed
	}
	if !ok {
		return renewalSkipped
	}
	s.recordRenewal(ctx, renewal, model.RenewalStatusFailed, nil, cause.Error())
	return renewalFailed
}

func (s *RenewalService) recordRenewal(ctx context.Context, renewal model.ContractRenewal, status model.RenewalStatus, newContractID *uuid.UUID, reason string) {
	entry := model.AuditEntry{
		TenantID:   renewal.TenantID,
		ActionType: model.AuditActionRenewalProcessed,
		EntityType: model.AuditEntityRenewal,
		EntityID:   renewal.ID,
		OldValues:  map[string]any{"status": string(renewal.Status)},
		NewValues:  map[string]any{"status": string(status)},
		Metadata: map[string]any{
			"actor":                schedulerActor,
			"original_contract_id": renewal.OriginalContractID.String(),
		},
		RiskLevel: model.RiskLevelHigh,
	}
	if newContractID != nil {
		entry.NewValues["new_contract_id"] = newContractID.String()
	}
	if reason != "" {
		entry.Metadata["reason"] = reason
	}
	s.audit.record(ctx, entry)
}

// renewSuccessor builds the ACTIVE contract that replaces original for the
// next term starting at now.
func renewSuccessor(original model.Contract, renewal model.ContractRenewal, now time.Time) model.Contract {
	successor := original.Clone()
	parent := original.ID
	end := lifecycle.RenewalEndDate(now, original.RenewalPeriod)

	successor.ID = uuid.Nil
	successor.ContractNumber = ""
	successor.Version = 1
	successor.ParentContractID = &parent
	successor.Status = model.ContractStatusActive
	successor.StartDate = now
	successor.EndDate = &end
	successor.SignatureDate = nil
	successor.Signatures = []model.Signature{}
	successor.DocumentURL = ""
	successor.DocumentHash = ""
	successor.CreatedBy = renewal.CreatedBy
	successor.CreatedAt = now
	successor.UpdatedBy = nil
	successor.UpdatedAt = nil
	if successor.Metadata == nil {
		successor.Metadata = map[string]any{}
	}
	delete(successor.Metadata, model.MetadataSignatureProvider)
	delete(successor.Metadata, model.MetadataSignatureProcessID)
	successor.Metadata[metadataRenewedFrom] = original.ID.String()
	successor.Metadata[metadataRenewalID] = renewal.ID.String()
	return successor
}

// termRenewal is the automatic renewal implied by an ACTIVE auto-renewing
// contract: due when its term ends. Open-ended contracts get none.
func termRenewal(c model.Contract, now time.Time) *model.ContractRenewal {
	if !c.AutoRenewal || c.EndDate == nil || c.Status != model.ContractStatusActive {
		return nil
	}
	return &model.ContractRenewal{
		TenantID:           c.TenantID,
		OriginalContractID: c.ID,
		RenewalType:        model.RenewalTypeAutomatic,
		ScheduledDate:      *c.EndDate,
		Status:             model.RenewalStatusScheduled,
		CreatedBy:          c.CreatedBy,
		CreatedAt:          now,
	}
}
