// Package lifecycle holds the contract status graph and the rules derived from it.
package lifecycle

import (
	"time"

	"github.com/nurpe/snowops-contracts/internal/model"
)

var transitions = map[model.ContractStatus][]model.ContractStatus{
	model.ContractStatusDraft:            {model.ContractStatusPendingReview},
	model.ContractStatusPendingReview:    {model.ContractStatusPendingSignature},
	model.ContractStatusPendingSignature: {model.ContractStatusActive},
	model.ContractStatusActive: {
		model.ContractStatusSuspended,
		model.ContractStatusTerminated,
		model.ContractStatusExpired,
		model.ContractStatusCancelled,
	},
	model.ContractStatusSuspended: {model.ContractStatusActive},
}

// MutableStatuses is the allow-list of statuses in which contract fields may be edited.
var MutableStatuses = []model.ContractStatus{
	model.ContractStatusDraft,
	model.ContractStatusPendingReview,
	model.ContractStatusSuspended,
}

// CanTransition reports whether the graph has an edge from -> to.
func CanTransition(from, to model.ContractStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionManually excludes PENDING_SIGNATURE -> ACTIVE, which only
// completion of every signature may take.
func CanTransitionManually(from, to model.ContractStatus) bool {
	if from == model.ContractStatusPendingSignature && to == model.ContractStatusActive {
		return false
	}
	return CanTransition(from, to)
}

func Next(from model.ContractStatus) []model.ContractStatus {
	out := make([]model.ContractStatus, len(transitions[from]))
	copy(out, transitions[from])
	return out
}

func IsTerminal(status model.ContractStatus) bool {
	return len(transitions[status]) == 0 && status.Valid()
}

func IsMutable(status model.ContractStatus) bool {
	for _, s := range MutableStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func CanInitiateSignature(status model.ContractStatus) bool {
	return status == model.ContractStatusPendingSignature
}

// ShouldActivate reports whether a contract awaiting signatures has been
// fully executed.
func ShouldActivate(status model.ContractStatus, signatures []model.Signature) bool {
	return status == model.ContractStatusPendingSignature && model.AllSigned(signatures)
}

// RenewalEndDate returns the end of a renewed term starting at start.
// Unknown or missing periods renew for one year.
func RenewalEndDate(start time.Time, period *model.RenewalPeriod) time.Time {
	if period == nil {
		return start.AddDate(1, 0, 0)
	}
	switch *period {
	case model.RenewalPeriodMonthly:
		return start.AddDate(0, 1, 0)
	case model.RenewalPeriodQuarterly:
		return start.AddDate(0, 3, 0)
	case model.RenewalPeriodSemiAnnual:
		return start.AddDate(0, 6, 0)
	case model.RenewalPeriodAnnual:
		return start.AddDate(1, 0, 0)
	case model.RenewalPeriodBiennial:
		return start.AddDate(2, 0, 0)
	default:
		return start.AddDate(1, 0, 0)
	}
}
