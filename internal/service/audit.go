package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/snowops-contracts/internal/model"
)

const webhookActor = "webhook"

type auditor struct {
	sink  AuditSink
	clock Clock
	log   zerolog.Logger
}

// record never fails the caller. A lost entry is logged as a warning.
func (a auditor) record(ctx context.Context, entry model.AuditEntry) {
	if a.sink == nil {
		return
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = a.clock.Now()
	}
	if err := a.sink.Record(ctx, entry); err != nil {
		a.log.Warn().
			Err(err).
			Str("action_type", entry.ActionType).
			Str("entity_type", entry.EntityType).
			Str("entity_id", entry.EntityID.String()).
			Str("tenant_id", entry.TenantID.String()).
			Msg("audit entry not recorded")
	}
}

func contractEntry(c *model.Contract, actor uuid.UUID, action string, risk model.RiskLevel) model.AuditEntry {
	return model.AuditEntry{
		TenantID:   c.TenantID,
		UserID:     actor,
		ActionType: action,
		EntityType: model.AuditEntityContract,
		EntityID:   c.ID,
		RiskLevel:  risk,
	}
}

func contractSnapshot(c *model.Contract) map[string]any {
	snap := map[string]any{
		"contract_number": c.ContractNumber,
		"version":         c.Version,
		"status":          string(c.Status),
		"title":           c.Title,
		"total_value":     c.TotalValue.String(),
		"currency":        c.Currency,
		"start_date":      c.StartDate,
		"auto_renewal":    c.AutoRenewal,
	}
	if c.EndDate != nil {
		snap["end_date"] = *c.EndDate
	}
	if c.ParentContractID != nil {
		snap["parent_contract_id"] = c.ParentContractID.String()
	}
	if c.SignatureDate != nil {
		snap["signature_date"] = *c.SignatureDate
	}
	return snap
}
