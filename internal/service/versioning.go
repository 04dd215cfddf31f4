package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/snowops-contracts/internal/model"
	"github.com/nurpe/snowops-contracts/internal/repository"
)

type CreateVersionInput struct {
	Principal  model.Principal
	ContractID uuid.UUID
	Changes    ContractChanges
}

// CreateVersion derives a new DRAFT version from an existing contract. The
// original row is read, never written.
func (s *ContractService) CreateVersion(ctx context.Context, input CreateVersionInput) (*model.Contract, error) {
	if !input.Principal.CanWrite() {
		return nil, ErrPermissionDenied
	}

	original, err := s.store.GetContract(ctx, input.Principal.TenantID, input.ContractID)
	if err != nil {
		return nil, storeError("load contract", err)
	}

	version := deriveVersion(*original, input.Principal.UserID, s.clock.Now())
	input.Changes.apply(&version)
	if err := validateContract(&version); err != nil {
		return nil, err
	}

	if err := s.store.CreateContract(ctx, &version); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: version %d of %s already exists", ErrConflict, version.Version, version.ContractNumber)
		}
		return nil, storeError("create contract version", err)
	}

	entry := contractEntry(&version, input.Principal.UserID, model.AuditActionVersionCreated, model.RiskLevelHigh)
	entry.OldValues = contractSnapshot(original)
	entry.NewValues = contractSnapshot(&version)
	entry.Metadata = map[string]any{
		"parent_contract_id": original.ID.String(),
		"parent_version":     original.Version,
	}
	s.audit.record(ctx, entry)

	s.log.Info().
		Str("contract_id", version.ID.String()).
		Str("parent_contract_id", original.ID.String()).
		Str("tenant_id", version.TenantID.String()).
		Int("version", version.Version).
		Msg("contract version created")
	return &version, nil
}

func deriveVersion(original model.Contract, actor uuid.UUID, now time.Time) model.Contract {
	version := original.Clone()
	parent := original.ID

	version.ID = uuid.Nil
	version.Version = original.Version + 1
	version.ParentContractID = &parent
	version.Status = model.ContractStatusDraft
	version.Signatures = []model.Signature{}
	version.SignatureDate = nil
	version.DocumentURL = ""
	version.DocumentHash = ""
	version.CreatedBy = actor
	version.CreatedAt = now
	version.UpdatedBy = nil
	version.UpdatedAt = nil
	if version.Metadata == nil {
		version.Metadata = map[string]any{}
	}
	delete(version.Metadata, model.MetadataSignatureProvider)
	delete(version.Metadata, model.MetadataSignatureProcessID)
	return version
}
