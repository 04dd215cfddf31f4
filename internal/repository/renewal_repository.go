package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/snowops-contracts/internal/model"
)

func (r *ContractRepository) CreateRenewal(ctx context.Context, renewal *model.ContractRenewal) error {
	if renewal.ID == uuid.Nil {
		renewal.ID = uuid.New()
	}
	row := toRenewalRow(renewal)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// DueRenewals returns SCHEDULED renewals whose date has passed, across all
// tenants, oldest first.
func (r *ContractRepository) DueRenewals(ctx context.Context, now time.Time, limit int) ([]model.ContractRenewal, error) {
	q := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_date <= ?", string(model.RenewalStatusScheduled), now).
		Order("scheduled_date ASC").
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []renewalRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	renewals := make([]model.ContractRenewal, 0, len(rows))
	for _, row := range rows {
		renewals = append(renewals, row.toModel())
	}
	return renewals, nil
}

// TransitionRenewal applies change only if the row is still in the expected
// status. Losing the race reports false.
func (r *ContractRepository) TransitionRenewal(ctx context.Context, change RenewalChange) (bool, error) {
	values := map[string]any{
		"status":     string(change.Next),
		"updated_at": change.At,
	}
	if change.NewContractID != nil {
		values["new_contract_id"] = *change.NewContractID
	}
	res := r.db.WithContext(ctx).
		Model(&renewalRow{}).
		Where("id = ? AND status = ?", change.ID, string(change.Expected)).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ContractRepository) ListRenewals(ctx context.Context, tenantID uuid.UUID) ([]model.ContractRenewal, error) {
	var rows []renewalRow
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("scheduled_date DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	renewals := make([]model.ContractRenewal, 0, len(rows))
	for _, row := range rows {
		renewals = append(renewals, row.toModel())
	}
	return renewals, nil
}
