package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/nurpe/snowops-contracts/internal/model"
)

// AuditRepository is the write-only sink for audit entries.
type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Record(ctx context.Context, entry model.AuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	row := auditRow{
		ID:         entry.ID,
		TenantID:   entry.TenantID,
		UserID:     entry.UserID,
		ActionType: entry.ActionType,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		OldValues:  datatypes.JSONMap(entry.OldValues),
		NewValues:  datatypes.JSONMap(entry.NewValues),
		Metadata:   datatypes.JSONMap(entry.Metadata),
		RiskLevel:  string(entry.RiskLevel),
		CreatedAt:  entry.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}
