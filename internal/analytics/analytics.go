// Package analytics computes tenant rollups over contracts and renewals.
package analytics

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nurpe/snowops-contracts/internal/model"
)

const DefaultHorizon = 30 * 24 * time.Hour

// Compute has no side effects. A non-positive horizon falls back to DefaultHorizon.
func Compute(contracts []model.Contract, renewals []model.ContractRenewal, now time.Time, horizon time.Duration) model.ContractAnalytics {
	if horizon <= 0 {
		horizon = DefaultHorizon
	}
	limit := now.Add(horizon)

	out := model.ContractAnalytics{
		TotalContracts:       len(contracts),
		TotalValue:           decimal.Zero,
		AverageContractValue: decimal.Zero,
		ContractsByType:      make(map[model.ContractType]int),
		ContractsByStatus:    make(map[model.ContractStatus]int),
		HorizonDays:          int(horizon / (24 * time.Hour)),
		GeneratedAt:          now,
	}

	withSignatures := 0
	for _, c := range contracts {
		out.ContractsByType[c.ContractType]++
		out.ContractsByStatus[c.Status]++
		out.TotalValue = out.TotalValue.Add(c.TotalValue)

		switch c.Status {
		case model.ContractStatusActive:
			out.ActiveContracts++
			if c.EndDate != nil && !c.EndDate.Before(now) && !c.EndDate.After(limit) {
				out.ExpiringSoon++
			}
		case model.ContractStatusPendingSignature:
			out.PendingSignatures++
		}

		if len(c.Signatures) > 0 {
			withSignatures++
		}
	}

	if out.TotalContracts > 0 {
		total := decimal.NewFromInt(int64(out.TotalContracts))
		out.AverageContractValue = out.TotalValue.Div(total).Round(2)
		out.SignatureCompletionRate = percent(withSignatures, out.TotalContracts)
	}

	out.RenewalRate = RenewalRate(renewals)
	return out
}

// RenewalRate is the share of consumed renewals that completed. It is nil
// while no renewal has reached COMPLETED, REJECTED or FAILED.
func RenewalRate(renewals []model.ContractRenewal) *float64 {
	completed, finished := 0, 0
	for _, r := range renewals {
		if !r.Status.Terminal() {
			continue
		}
		finished++
		if r.Status == model.RenewalStatusCompleted {
			completed++
		}
	}
	if finished == 0 {
		return nil
	}
	rate := percent(completed, finished)
	return &rate
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	v, _ := decimal.NewFromInt(int64(part)).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(int64(whole))).
		Round(2).
		Float64()
	return v
}
