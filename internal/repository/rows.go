package repository

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/nurpe/snowops-contracts/internal/model"
)

type contractRow struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID          uuid.UUID `gorm:"type:uuid"`
	ContractNumber    string
	Version           int
	ParentContractID  *uuid.UUID `gorm:"type:uuid"`
	Title             string
	Description       string
	ContractType      string
	ContractorID      uuid.UUID `gorm:"type:uuid"`
	ContracteeID      uuid.UUID `gorm:"type:uuid"`
	StartDate         time.Time
	EndDate           *time.Time
	SignatureDate     *time.Time
	TotalValue        decimal.Decimal `gorm:"type:numeric(18,2)"`
	Currency          string
	PaymentTerms      datatypes.JSONType[model.PaymentTerms] `gorm:"type:jsonb"`
	AutoRenewal       bool
	RenewalPeriod     *string
	RenewalNoticeDays *int
	Status            string
	DocumentURL       string
	DocumentHash      string
	Metadata          datatypes.JSONMap `gorm:"type:jsonb"`
	Tags              pq.StringArray    `gorm:"type:text[]"`
	CreatedBy         uuid.UUID         `gorm:"type:uuid"`
	CreatedAt         time.Time         `gorm:"autoCreateTime:false"`
	UpdatedBy         *uuid.UUID        `gorm:"type:uuid"`
	UpdatedAt         *time.Time        `gorm:"autoUpdateTime:false"`
}

func (contractRow) TableName() string { return "contracts" }

func toContractRow(c *model.Contract) contractRow {
	row := contractRow{
		ID:                c.ID,
		TenantID:          c.TenantID,
		ContractNumber:    c.ContractNumber,
		Version:           c.Version,
		ParentContractID:  c.ParentContractID,
		Title:             c.Title,
		Description:       c.Description,
		ContractType:      string(c.ContractType),
		ContractorID:      c.ContractorID,
		ContracteeID:      c.ContracteeID,
		StartDate:         c.StartDate,
		EndDate:           c.EndDate,
		SignatureDate:     c.SignatureDate,
		TotalValue:        c.TotalValue,
		Currency:          c.Currency,
		PaymentTerms:      datatypes.NewJSONType(c.PaymentTerms),
		AutoRenewal:       c.AutoRenewal,
		RenewalNoticeDays: c.RenewalNoticeDays,
		Status:            string(c.Status),
		DocumentURL:       c.DocumentURL,
		DocumentHash:      c.DocumentHash,
		Metadata:          datatypes.JSONMap(c.Metadata),
		Tags:              pq.StringArray(c.Tags),
		CreatedBy:         c.CreatedBy,
		CreatedAt:         c.CreatedAt,
		UpdatedBy:         c.UpdatedBy,
		UpdatedAt:         c.UpdatedAt,
	}
	if c.RenewalPeriod != nil {
		period := string(*c.RenewalPeriod)
		row.RenewalPeriod = &period
	}
	if row.Metadata == nil {
		row.Metadata = datatypes.JSONMap{}
	}
	if row.Tags == nil {
		row.Tags = pq.StringArray{}
	}
	return row
}

func (r contractRow) toModel() model.Contract {
	c := model.Contract{
		ID:                r.ID,
		TenantID:          r.TenantID,
		ContractNumber:    r.ContractNumber,
		Version:           r.Version,
		ParentContractID:  r.ParentContractID,
		Title:             r.Title,
		Description:       r.Description,
		ContractType:      model.ContractType(r.ContractType),
		ContractorID:      r.ContractorID,
		ContracteeID:      r.ContracteeID,
		StartDate:         r.StartDate,
		EndDate:           r.EndDate,
		SignatureDate:     r.SignatureDate,
		TotalValue:        r.TotalValue,
		Currency:          r.Currency,
		PaymentTerms:      r.PaymentTerms.Data(),
		AutoRenewal:       r.AutoRenewal,
		RenewalNoticeDays: r.RenewalNoticeDays,
		Status:            model.ContractStatus(r.Status),
		Signatures:        []model.Signature{},
		DocumentURL:       r.DocumentURL,
		DocumentHash:      r.DocumentHash,
		Metadata:          map[string]any(r.Metadata),
		Tags:              []string(r.Tags),
		CreatedBy:         r.CreatedBy,
		CreatedAt:         r.CreatedAt,
		UpdatedBy:         r.UpdatedBy,
		UpdatedAt:         r.UpdatedAt,
	}
	if r.RenewalPeriod != nil {
		period := model.RenewalPeriod(*r.RenewalPeriod)
		c.RenewalPeriod = &period
	}
	return c
}

type signatureRow struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ContractID      uuid.UUID  `gorm:"type:uuid"`
	SignerID        *uuid.UUID `gorm:"type:uuid"`
	SignerName      string
	SignerEmail     string
	SignerRole      string
	SignatureType   string
	Status          string
	SignatureData   string
	SignedAt        *time.Time
	IPAddress       string
	UserAgent       string
	CertificateInfo datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt       time.Time      `gorm:"autoCreateTime:false"`
}

func (signatureRow) TableName() string { return "contract_signatures" }

func toSignatureRow(s model.Signature) (signatureRow, error) {
	row := signatureRow{
		ID:            s.ID,
		ContractID:    s.ContractID,
		SignerID:      s.SignerID,
		SignerName:    s.SignerName,
		SignerEmail:   s.SignerEmail,
		SignerRole:    string(s.SignerRole),
		SignatureType: string(s.SignatureType),
		Status:        string(s.Status),
		SignatureData: s.SignatureData,
		SignedAt:      s.SignedAt,
		IPAddress:     s.IPAddress,
		UserAgent:     s.UserAgent,
		CreatedAt:     s.CreatedAt,
	}
	if s.CertificateInfo != nil {
		raw, err := json.Marshal(s.CertificateInfo)
		if err != nil {
			return signatureRow{}, err
		}
		row.CertificateInfo = datatypes.JSON(raw)
	}
	return row, nil
}

func (r signatureRow) toModel() model.Signature {
	s := model.Signature{
		ID:            r.ID,
		ContractID:    r.ContractID,
		SignerID:      r.SignerID,
		SignerName:    r.SignerName,
		SignerEmail:   r.SignerEmail,
		SignerRole:    model.SignerRole(r.SignerRole),
		SignatureType: model.SignatureType(r.SignatureType),
		Status:        model.SignatureStatus(r.Status),
		SignatureData: r.SignatureData,
		SignedAt:      r.SignedAt,
		IPAddress:     r.IPAddress,
		UserAgent:     r.UserAgent,
		CreatedAt:     r.CreatedAt,
	}
	if len(r.CertificateInfo) > 0 {
		var info model.CertificateInfo
		if err := json.Unmarshal(r.CertificateInfo, &info); err == nil {
			s.CertificateInfo = &info
		}
	}
	return s
}

type renewalRow struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID           uuid.UUID  `gorm:"type:uuid"`
	OriginalContractID uuid.UUID  `gorm:"type:uuid"`
	NewContractID      *uuid.UUID `gorm:"type:uuid"`
	RenewalType        string
	ScheduledDate      time.Time
	NotificationSentAt *time.Time
	Status             string
	TermsChanged       bool
	ChangeSummary      string
	CreatedBy          uuid.UUID  `gorm:"type:uuid"`
	CreatedAt          time.Time  `gorm:"autoCreateTime:false"`
	UpdatedAt          *time.Time `gorm:"autoUpdateTime:false"`
}

func (renewalRow) TableName() string { return "contract_renewals" }

func toRenewalRow(r *model.ContractRenewal) renewalRow {
	return renewalRow{
		ID:                 r.ID,
		TenantID:           r.TenantID,
		OriginalContractID: r.OriginalContractID,
		NewContractID:      r.NewContractID,
		RenewalType:        string(r.RenewalType),
		ScheduledDate:      r.ScheduledDate,
		NotificationSentAt: r.NotificationSentAt,
		Status:             string(r.Status),
		TermsChanged:       r.TermsChanged,
		ChangeSummary:      r.ChangeSummary,
		CreatedBy:          r.CreatedBy,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func (r renewalRow) toModel() model.ContractRenewal {
	return model.ContractRenewal{
		ID:                 r.ID,
		TenantID:           r.TenantID,
		OriginalContractID: r.OriginalContractID,
		NewContractID:      r.NewContractID,
		RenewalType:        model.RenewalType(r.RenewalType),
		ScheduledDate:      r.ScheduledDate,
		NotificationSentAt: r.NotificationSentAt,
		Status:             model.RenewalStatus(r.Status),
		TermsChanged:       r.TermsChanged,
		ChangeSummary:      r.ChangeSummary,
		CreatedBy:          r.CreatedBy,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

type auditRow struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	TenantID   uuid.UUID `gorm:"type:uuid"`
	UserID     uuid.UUID `gorm:"type:uuid"`
	ActionType string
	EntityType string
	EntityID   uuid.UUID         `gorm:"type:uuid"`
	OldValues  datatypes.JSONMap `gorm:"type:jsonb"`
	NewValues  datatypes.JSONMap `gorm:"type:jsonb"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	RiskLevel  string
	CreatedAt  time.Time `gorm:"autoCreateTime:false"`
}

func (auditRow) TableName() string { return "audit_logs" }
