package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ContractStatus string

const (
	ContractStatusDraft            ContractStatus = "DRAFT"
	ContractStatusPendingReview    ContractStatus = "PENDING_REVIEW"
	ContractStatusPendingSignature ContractStatus = "PENDING_SIGNATURE"
	ContractStatusActive           ContractStatus = "ACTIVE"
	ContractStatusSuspended        ContractStatus = "SUSPENDED"
	ContractStatusTerminated       ContractStatus = "TERMINATED"
	ContractStatusExpired          ContractStatus = "EXPIRED"
	ContractStatusCancelled        ContractStatus = "CANCELLED"
)

// ContractStatuses lists every status in lifecycle order.
var ContractStatuses = []ContractStatus{
	ContractStatusDraft,
	ContractStatusPendingReview,
	ContractStatusPendingSignature,
	ContractStatusActive,
	ContractStatusSuspended,
	ContractStatusTerminated,
	ContractStatusExpired,
	ContractStatusCancelled,
}

func (s ContractStatus) Valid() bool {
	for _, known := range ContractStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type ContractType string

const (
	ContractTypeServiceAgreement ContractType = "SERVICE_AGREEMENT"
	ContractTypeSoftwareLicense  ContractType = "SOFTWARE_LICENSE"
	ContractTypeMaintenance      ContractType = "MAINTENANCE_CONTRACT"
	ContractTypeConsulting       ContractType = "CONSULTING_AGREEMENT"
	ContractTypeSubscription     ContractType = "SUBSCRIPTION_CONTRACT"
	ContractTypePartnership      ContractType = "PARTNERSHIP_AGREEMENT"
	ContractTypeNDA              ContractType = "NDA"
	ContractTypeEmployment       ContractType = "EMPLOYMENT_CONTRACT"
	ContractTypeCustom           ContractType = "CUSTOM"
)

var ContractTypes = []ContractType{
	ContractTypeServiceAgreement,
	ContractTypeSoftwareLicense,
	ContractTypeMaintenance,
	ContractTypeConsulting,
	ContractTypeSubscription,
	ContractTypePartnership,
	ContractTypeNDA,
	ContractTypeEmployment,
	ContractTypeCustom,
}

func (t ContractType) Valid() bool {
	for _, known := range ContractTypes {
		if t == known {
			return true
		}
	}
	return false
}

type BillingCycle string

const (
	BillingCycleMonthly    BillingCycle = "MONTHLY"
	BillingCycleQuarterly  BillingCycle = "QUARTERLY"
	BillingCycleSemiAnnual BillingCycle = "SEMI_ANNUAL"
	BillingCycleAnnual     BillingCycle = "ANNUAL"
	BillingCycleOneTime    BillingCycle = "ONE_TIME"
	BillingCycleCustom     BillingCycle = "CUSTOM"
)

func (c BillingCycle) Valid() bool {
	switch c {
	case BillingCycleMonthly, BillingCycleQuarterly, BillingCycleSemiAnnual,
		BillingCycleAnnual, BillingCycleOneTime, BillingCycleCustom:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentMethodBankTransfer        PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCreditCard          PaymentMethod = "CREDIT_CARD"
	PaymentMethodCreditCardRecurring PaymentMethod = "CREDIT_CARD_RECURRING"
	PaymentMethodPix                 PaymentMethod = "PIX"
	PaymentMethodBoleto              PaymentMethod = "BOLETO"
	PaymentMethodCheck               PaymentMethod = "CHECK"
	PaymentMethodCash                PaymentMethod = "CASH"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodBankTransfer, PaymentMethodCreditCard, PaymentMethodCreditCardRecurring,
		PaymentMethodPix, PaymentMethodBoleto, PaymentMethodCheck, PaymentMethodCash:
		return true
	}
	return false
}

type RenewalPeriod string

const (
	RenewalPeriodMonthly    RenewalPeriod = "MONTHLY"
	RenewalPeriodQuarterly  RenewalPeriod = "QUARTERLY"
	RenewalPeriodSemiAnnual RenewalPeriod = "SEMI_ANNUAL"
	RenewalPeriodAnnual     RenewalPeriod = "ANNUAL"
	RenewalPeriodBiennial   RenewalPeriod = "BIENNIAL"
)

func (p RenewalPeriod) Valid() bool {
	switch p {
	case RenewalPeriodMonthly, RenewalPeriodQuarterly, RenewalPeriodSemiAnnual,
		RenewalPeriodAnnual, RenewalPeriodBiennial:
		return true
	}
	return false
}

type PaymentTerms struct {
	BillingCycle       BillingCycle  `json:"billing_cycle"`
	PaymentMethod      PaymentMethod `json:"payment_method"`
	DueDays            int           `json:"due_days"`
	LateFeePercentage  *float64      `json:"late_fee_percentage,omitempty"`
	DiscountPercentage *float64      `json:"discount_percentage,omitempty"`
	DiscountDays       *int          `json:"discount_days,omitempty"`
}

// Metadata keys written by the signature orchestrator.
const (
	MetadataSignatureProvider  = "signature_provider"
	MetadataSignatureProcessID = "signature_process_id"
)

type Contract struct {
	ID                uuid.UUID       `json:"id"`
	TenantID          uuid.UUID       `json:"tenant_id"`
	ContractNumber    string          `json:"contract_number"`
	Version           int             `json:"version"`
	ParentContractID  *uuid.UUID      `json:"parent_contract_id,omitempty"`
	Title             string          `json:"title"`
	Description       string          `json:"description,omitempty"`
	ContractType      ContractType    `json:"contract_type"`
	ContractorID      uuid.UUID       `json:"contractor_id"`
	ContracteeID      uuid.UUID       `json:"contractee_id"`
	StartDate         time.Time       `json:"start_date"`
	EndDate           *time.Time      `json:"end_date,omitempty"`
	SignatureDate     *time.Time      `json:"signature_date,omitempty"`
	TotalValue        decimal.Decimal `json:"total_value"`
	Currency          string          `json:"currency"`
	PaymentTerms      PaymentTerms    `json:"payment_terms"`
	AutoRenewal       bool            `json:"auto_renewal"`
	RenewalPeriod     *RenewalPeriod  `json:"renewal_period,omitempty"`
	RenewalNoticeDays *int            `json:"renewal_notice_days,omitempty"`
	Status            ContractStatus  `json:"status"`
	Signatures        []Signature     `json:"signatures"`
	DocumentURL       string          `json:"document_url,omitempty"`
	DocumentHash      string          `json:"document_hash,omitempty"`
	Metadata          map[string]any  `json:"metadata,omitempty"`
	Tags              []string        `json:"tags,omitempty"`
	CreatedBy         uuid.UUID       `json:"created_by"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedBy         *uuid.UUID      `json:"updated_by,omitempty"`
	UpdatedAt         *time.Time      `json:"updated_at,omitempty"`
}

// Clone returns a deep copy so callers can derive new records without
// touching the source.
func (c Contract) Clone() Contract {
	out := c
	if c.ParentContractID != nil {
		id := *c.ParentContractID
		out.ParentContractID = &id
	}
	if c.EndDate != nil {
		t := *c.EndDate
		out.EndDate = &t
	}
	if c.SignatureDate != nil {
		t := *c.SignatureDate
		out.SignatureDate = &t
	}
	if c.RenewalPeriod != nil {
		p := *c.RenewalPeriod
		out.RenewalPeriod = &p
	}
	if c.RenewalNoticeDays != nil {
		d := *c.RenewalNoticeDays
		out.RenewalNoticeDays = &d
	}
	if c.UpdatedBy != nil {
		id := *c.UpdatedBy
		out.UpdatedBy = &id
	}
	if c.UpdatedAt != nil {
		t := *c.UpdatedAt
		out.UpdatedAt = &t
	}
	if c.Signatures != nil {
		out.Signatures = make([]Signature, len(c.Signatures))
		copy(out.Signatures, c.Signatures)
	}
	if c.Metadata != nil {
		out.Metadata = make(map[string]any, len(c.Metadata))
		for k, v := range c.Metadata {
			out.Metadata[k] = v
		}
	}
	if c.Tags != nil {
		out.Tags = append([]string(nil), c.Tags...)
	}
	return out
}

// ContractFilter drives tenant scoped search. Zero values are ignored.
type ContractFilter struct {
	TenantID     uuid.UUID
	Status       ContractStatus
	ContractType ContractType
	StartFrom    *time.Time
	EndUntil     *time.Time
	SearchTerm   string
	Limit        int
	Offset       int
}
