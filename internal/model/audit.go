package model

import (
	"time"

	"github.com/google/uuid"
)

type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "LOW"
	RiskLevelMedium   RiskLevel = "MEDIUM"
	RiskLevelHigh     RiskLevel = "HIGH"
	RiskLevelCritical RiskLevel = "CRITICAL"
)

const (
	AuditActionCreate             = "CREATE"
	AuditActionUpdate             = "UPDATE"
	AuditActionStatusChanged      = "STATUS_CHANGED"
	AuditActionVersionCreated     = "VERSION_CREATED"
	AuditActionSignatureInitiated = "SIGNATURE_INITIATED"
	AuditActionSignatureUpdated   = "SIGNATURE_UPDATED"
	AuditActionContractSigned     = "CONTRACT_SIGNED"
	AuditActionRenewalScheduled   = "RENEWAL_SCHEDULED"
	AuditActionRenewalProcessed   = "RENEWAL_PROCESSED"
	AuditActionContractTerminated = "CONTRACT_TERMINATED"
	AuditActionWebhookRejected    = "WEBHOOK_REJECTED"
)

const (
	AuditEntityContract = "CONTRACT"
	AuditEntityRenewal  = "CONTRACT_RENEWAL"
	AuditEntityWebhook  = "WEBHOOK"
)

type AuditEntry struct {
	ID         uuid.UUID      `json:"id"`
	TenantID   uuid.UUID      `json:"tenant_id"`
	UserID     uuid.UUID      `json:"user_id"`
	ActionType string         `json:"action_type"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	OldValues  map[string]any `json:"old_values,omitempty"`
	NewValues  map[string]any `json:"new_values,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	RiskLevel  RiskLevel      `json:"risk_level"`
	CreatedAt  time.Time      `json:"created_at"`
}
