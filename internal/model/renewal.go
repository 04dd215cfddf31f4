package model

import (
	"time"

	"github.com/google/uuid"
)

type RenewalType string

const (
	RenewalTypeAutomatic     RenewalType = "AUTOMATIC"
	RenewalTypeManual        RenewalType = "MANUAL"
	RenewalTypeRenegotiation RenewalType = "RENEGOTIATION"
)

func (t RenewalType) Valid() bool {
	switch t {
	case RenewalTypeAutomatic, RenewalTypeManual, RenewalTypeRenegotiation:
		return true
	}
	return false
}

type RenewalStatus string

const (
	RenewalStatusScheduled RenewalStatus = "SCHEDULED"
	RenewalStatusNotified  RenewalStatus = "NOTIFIED"
	RenewalStatusConfirmed RenewalStatus = "CONFIRMED"
	RenewalStatusRejected  RenewalStatus = "REJECTED"
	RenewalStatusCompleted RenewalStatus = "COMPLETED"
	RenewalStatusFailed    RenewalStatus = "FAILED"
)

// Terminal reports whether the renewal has been consumed.
func (s RenewalStatus) Terminal() bool {
	return s == RenewalStatusCompleted || s == RenewalStatusRejected || s == RenewalStatusFailed
}

type ContractRenewal struct {
	ID                 uuid.UUID     `json:"id"`
	TenantID           uuid.UUID     `json:"tenant_id"`
	OriginalContractID uuid.UUID     `json:"original_contract_id"`
	NewContractID      *uuid.UUID    `json:"new_contract_id,omitempty"`
	RenewalType        RenewalType   `json:"renewal_type"`
	ScheduledDate      time.Time     `json:"scheduled_date"`
	NotificationSentAt *time.Time    `json:"notification_sent_at,omitempty"`
	Status             RenewalStatus `json:"status"`
	TermsChanged       bool          `json:"terms_changed"`
	ChangeSummary      string        `json:"change_summary,omitempty"`
	CreatedBy          uuid.UUID     `json:"created_by"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          *time.Time    `json:"updated_at,omitempty"`
}

// RenewalRunSummary reports the outcome of one pass over due renewals.
type RenewalRunSummary struct {
	Processed int `json:"processed"`
	Completed int `json:"completed"`
	Rejected  int `json:"rejected"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
}
