package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nurpe/snowops-contracts/internal/model"
)

const (
	defaultSearchLimit = 50
	maxSearchLimit     = 500
)

// Store is the persistence boundary of the contract engine. Every method
// runs against the transaction it was obtained from when called inside
// WithinTx.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	CreateContract(ctx context.Context, contract *model.Contract) error
	GetContract(ctx context.Context, tenantID, id uuid.UUID) (*model.Contract, error)
	LockContract(ctx context.Context, id uuid.UUID) (*model.Contract, error)
	UpdateContract(ctx context.Context, contract *model.Contract, expected model.ContractStatus) (bool, error)
	LatestContractNumber(ctx context.Context, tenantID uuid.UUID, prefix string) (string, error)
	SearchContracts(ctx context.Context, filter model.ContractFilter) ([]model.Contract, int64, error)
	ListContracts(ctx context.Context, tenantID uuid.UUID) ([]model.Contract, error)

	CreateSignatures(ctx context.Context, signatures []model.Signature) error
	UpdateSignatureStatus(ctx context.Context, update SignatureUpdate) (bool, error)

	CreateRenewal(ctx context.Context, renewal *model.ContractRenewal) error
	DueRenewals(ctx context.Context, now time.Time, limit int) ([]model.ContractRenewal, error)
	TransitionRenewal(ctx context.Context, change RenewalChange) (bool, error)
	ListRenewals(ctx context.Context, tenantID uuid.UUID) ([]model.ContractRenewal, error)
}

// SignatureUpdate moves one pending signature row to a terminal status.
type SignatureUpdate struct {
	ContractID    uuid.UUID
	SignerEmail   string
	Status        model.SignatureStatus
	SignatureData string
	SignedAt      *time.Time
}

// RenewalChange is a conditional status change of a renewal row.
type RenewalChange struct {
	ID            uuid.UUID
	Expected      model.RenewalStatus
	Next          model.RenewalStatus
	NewContractID *uuid.UUID
	At            time.Time
}

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ContractRepository{db: tx})
	})
}

func (r *ContractRepository) CreateContract(ctx context.Context, contract *model.Contract) error {
	if contract.ID == uuid.Nil {
		contract.ID = uuid.New()
	}
	row := toContractRow(contract)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return translateError(err)
	}
	return nil
}

func (r *ContractRepository) GetContract(ctx context.Context, tenantID, id uuid.UUID) (*model.Contract, error) {
	var row contractRow
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&row).Error
	if err != nil {
		return nil, translateError(err)
	}
	return r.withSignatures(ctx, row)
}

// LockContract loads a contract with SELECT ... FOR UPDATE. It must be
// called inside WithinTx for the lock to outlive the statement.
func (r *ContractRepository) LockContract(ctx context.Context, id uuid.UUID) (*model.Contract, error) {
	var row contractRow
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		return nil, translateError(err)
	}
	return r.withSignatures(ctx, row)
}

// UpdateContract writes every mutable column of contract if the stored
// status still equals expected. It reports whether a row was changed.
func (r *ContractRepository) UpdateContract(ctx context.Context, contract *model.Contract, expected model.ContractStatus) (bool, error) {
	row := toContractRow(contract)
	res := r.db.WithContext(ctx).
		Model(&contractRow{}).
		Where("id = ? AND tenant_id = ? AND status = ?", row.ID, row.TenantID, string(expected)).
		Updates(map[string]any{
			"title":               row.Title,
			"description":         row.Description,
			"contract_type":       row.ContractType,
			"contractor_id":       row.ContractorID,
			"contractee_id":       row.ContracteeID,
			"start_date":          row.StartDate,
			"end_date":            row.EndDate,
			"signature_date":      row.SignatureDate,
			"total_value":         row.TotalValue,
			"currency":            row.Currency,
			"payment_terms":       row.PaymentTerms,
			"auto_renewal":        row.AutoRenewal,
			"renewal_period":      row.RenewalPeriod,
			"renewal_notice_days": row.RenewalNoticeDays,
			"status":              row.Status,
			"document_url":        row.DocumentURL,
			"document_hash":       row.DocumentHash,
			"metadata":            row.Metadata,
			"tags":                row.Tags,
			"updated_by":          row.UpdatedBy,
			"updated_at":          row.UpdatedAt,
		})
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *ContractRepository) LatestContractNumber(ctx context.Context, tenantID uuid.UUID, prefix string) (string, error) {
	var number string
	err := r.db.WithContext(ctx).Raw(`
		SELECT contract_number
		FROM contracts
		WHERE tenant_id = ? AND contract_number LIKE ?
		ORDER BY contract_number DESC
		LIMIT 1
	`, tenantID, escapeLike(prefix)+"%").Scan(&number).Error
	if err != nil {
		return "", err
	}
	return number, nil
}

func (r *ContractRepository) SearchContracts(ctx context.Context, filter model.ContractFilter) ([]model.Contract, int64, error) {
	scoped := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&contractRow{}).Where("tenant_id = ?", filter.TenantID)
		if filter.Status != "" {
			q = q.Where("status = ?", string(filter.Status))
		}
		if filter.ContractType != "" {
			q = q.Where("contract_type = ?", string(filter.ContractType))
		}
		if filter.StartFrom != nil {
			q = q.Where("start_date >= ?", *filter.StartFrom)
		}
		if filter.EndUntil != nil {
			q = q.Where("end_date <= ?", *filter.EndUntil)
		}
		if term := strings.TrimSpace(filter.SearchTerm); term != "" {
			like := "%" + escapeLike(term) + "%"
			q = q.Where("(title ILIKE ? OR contract_number ILIKE ? OR description ILIKE ?)", like, like, like)
		}
		return q
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit, offset := Page(filter.Limit, filter.Offset)

	var rows []contractRow
	err := scoped().
		Order("created_at DESC").
		Order("version DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	contracts, err := r.attachSignatures(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return contracts, total, nil
}

func (r *ContractRepository) ListContracts(ctx context.Context, tenantID uuid.UUID) ([]model.Contract, error) {
	var rows []contractRow
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.attachSignatures(ctx, rows)
}

func (r *ContractRepository) CreateSignatures(ctx context.Context, signatures []model.Signature) error {
	if len(signatures) == 0 {
		return nil
	}
	rows := make([]signatureRow, 0, len(signatures))
	for i := range signatures {
		if signatures[i].ID == uuid.Nil {
			signatures[i].ID = uuid.New()
		}
		row, err := toSignatureRow(signatures[i])
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// UpdateSignatureStatus only touches rows still PENDING, so a repeated
// delivery of the same event changes nothing.
func (r *ContractRepository) UpdateSignatureStatus(ctx context.Context, update SignatureUpdate) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&signatureRow{}).
		Where("contract_id = ? AND lower(signer_email) = lower(?) AND status = ?",
			update.ContractID, update.SignerEmail, string(model.SignatureStatusPending)).
		Updates(map[string]any{
			"status":         string(update.Status),
			"signature_data": update.SignatureData,
			"signed_at":      update.SignedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ContractRepository) withSignatures(ctx context.Context, row contractRow) (*model.Contract, error) {
	contracts, err := r.attachSignatures(ctx, []contractRow{row})
	if err != nil {
		return nil, err
	}
	return &contracts[0], nil
}

func (r *ContractRepository) attachSignatures(ctx context.Context, rows []contractRow) ([]model.Contract, error) {
	contracts := make([]model.Contract, 0, len(rows))
	if len(rows) == 0 {
		return contracts, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var sigRows []signatureRow
	err := r.db.WithContext(ctx).
		Where("contract_id IN ?", ids).
		Order("created_at ASC").
		Order("signer_email ASC").
		Find(&sigRows).Error
	if err != nil {
		return nil, err
	}

	byContract := make(map[uuid.UUID][]model.Signature, len(rows))
	for _, s := range sigRows {
		byContract[s.ContractID] = append(byContract[s.ContractID], s.toModel())
	}

	for _, row := range rows {
		c := row.toModel()
		if sigs, ok := byContract[row.ID]; ok {
			c.Signatures = sigs
		}
		contracts = append(contracts, c)
	}
	return contracts, nil
}

// Page clamps pagination input to the supported window.
func Page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func escapeLike(raw string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(raw)
}
