package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractAnalytics is a derived tenant rollup. It is never persisted.
type ContractAnalytics struct {
	TotalContracts          int                    `json:"total_contracts"`
	ActiveContracts         int                    `json:"active_contracts"`
	PendingSignatures       int                    `json:"pending_signatures"`
	ExpiringSoon            int                    `json:"expiring_soon"`
	TotalValue              decimal.Decimal        `json:"total_value"`
	AverageContractValue    decimal.Decimal        `json:"average_contract_value"`
	ContractsByType         map[ContractType]int   `json:"contracts_by_type"`
	ContractsByStatus       map[ContractStatus]int `json:"contracts_by_status"`
	SignatureCompletionRate float64                `json:"signature_completion_rate"`
	// RenewalRate is nil when no renewal has reached a terminal status.
	RenewalRate *float64  `json:"renewal_rate"`
	HorizonDays int       `json:"expiring_horizon_days"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ContractReport bundles a search result with its rollup for export.
type ContractReport struct {
	TenantID    uuid.UUID
	GeneratedAt time.Time
	Filter      ContractFilter
	Contracts   []Contract
	Analytics   ContractAnalytics
}
