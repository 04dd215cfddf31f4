package service

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/snowops-contracts/internal/model"
)

const defaultCurrency = "BRL"

var hundred = decimal.NewFromInt(100)

// ContractChanges carries the editable contract fields. Nil means unchanged.
type ContractChanges struct {
	Title             *string
	Description       *string
	ContractType      *model.ContractType
	ContractorID      *uuid.UUID
	ContracteeID      *uuid.UUID
	StartDate         *time.Time
	EndDate           *time.Time
	ClearEndDate      bool
	TotalValue        *decimal.Decimal
	Currency          *string
	PaymentTerms      *model.PaymentTerms
	AutoRenewal       *bool
	RenewalPeriod     *model.RenewalPeriod
	RenewalNoticeDays *int
	Metadata          map[string]any
	Tags              []string
}

func (ch ContractChanges) apply(c *model.Contract) {
	if ch.Title != nil {
		c.Title = strings.TrimSpace(*ch.Title)
	}
	if ch.Description != nil {
		c.Description = *ch.Description
	}
	if ch.ContractType != nil {
		c.ContractType = *ch.ContractType
	}
	if ch.ContractorID != nil {
		c.ContractorID = *ch.ContractorID
	}
	if ch.ContracteeID != nil {
		c.ContracteeID = *ch.ContracteeID
	}
	if ch.StartDate != nil {
		c.StartDate = *ch.StartDate
	}
	if ch.ClearEndDate {
		c.EndDate = nil
	} else if ch.EndDate != nil {
		end := *ch.EndDate
		c.EndDate = &end
	}
	if ch.TotalValue != nil {
		c.TotalValue = *ch.TotalValue
	}
	if ch.Currency != nil {
		c.Currency = strings.ToUpper(strings.TrimSpace(*ch.Currency))
	}
	if ch.PaymentTerms != nil {
		c.PaymentTerms = *ch.PaymentTerms
	}
	if ch.AutoRenewal != nil {
		c.AutoRenewal = *ch.AutoRenewal
	}
	if ch.RenewalPeriod != nil {
		period := *ch.RenewalPeriod
		c.RenewalPeriod = &period
	}
	if ch.RenewalNoticeDays != nil {
		days := *ch.RenewalNoticeDays
		c.RenewalNoticeDays = &days
	}
	if ch.Metadata != nil {
		if c.Metadata == nil {
			c.Metadata = make(map[string]any, len(ch.Metadata))
		}
		for k, v := range ch.Metadata {
			c.Metadata[k] = v
		}
	}
	if ch.Tags != nil {
		c.Tags = normalizeTags(ch.Tags)
	}
}

func (ch ContractChanges) empty() bool {
	return ch.Title == nil && ch.Description == nil && ch.ContractType == nil &&
		ch.ContractorID == nil && ch.ContracteeID == nil && ch.StartDate == nil &&
		ch.EndDate == nil && !ch.ClearEndDate && ch.TotalValue == nil && ch.Currency == nil &&
		ch.PaymentTerms == nil && ch.AutoRenewal == nil && ch.RenewalPeriod == nil &&
		ch.RenewalNoticeDays == nil && ch.Metadata == nil && ch.Tags == nil
}

func validateContract(c *model.Contract) error {
	if strings.TrimSpace(c.Title) == "" {
		return validationError("title is required")
	}
	if !c.ContractType.Valid() {
		return validationError("invalid contract_type %q", c.ContractType)
	}
	if c.ContractorID == uuid.Nil {
		return validationError("contractor_id is required")
	}
	if c.ContracteeID == uuid.Nil {
		return validationError("contractee_id is required")
	}
	if c.StartDate.IsZero() {
		return validationError("start_date is required")
	}
	if c.EndDate != nil && !c.EndDate.After(c.StartDate) {
		return validationError("end_date must be after start_date")
	}
	if c.TotalValue.IsNegative() {
		return validationError("total_value must not be negative")
	}
	if len(c.Currency) != 3 {
		return validationError("currency must be a 3 letter code")
	}
	if err := validatePaymentTerms(c.PaymentTerms); err != nil {
		return err
	}
	if c.RenewalPeriod != nil && !c.RenewalPeriod.Valid() {
		return validationError("invalid renewal_period %q", *c.RenewalPeriod)
	}
	if c.AutoRenewal && c.RenewalPeriod == nil {
		return validationError("renewal_period is required when auto_renewal is set")
	}
	if c.RenewalNoticeDays != nil && *c.RenewalNoticeDays < 0 {
		return validationError("renewal_notice_days must not be negative")
	}
	return nil
}

func validatePaymentTerms(t model.PaymentTerms) error {
	if !t.BillingCycle.Valid() {
		return validationError("invalid billing_cycle %q", t.BillingCycle)
	}
	if !t.PaymentMethod.Valid() {
		return validationError("invalid payment_method %q", t.PaymentMethod)
	}
	if t.DueDays < 0 {
		return validationError("due_days must not be negative")
	}
	if err := validatePercentage("late_fee_percentage", t.LateFeePercentage); err != nil {
		return err
	}
	if err := validatePercentage("discount_percentage", t.DiscountPercentage); err != nil {
		return err
	}
	if t.DiscountDays != nil && *t.DiscountDays < 0 {
		return validationError("discount_days must not be negative")
	}
	return nil
}

func validatePercentage(field string, v *float64) error {
	if v == nil {
		return nil
	}
	d := decimal.NewFromFloat(*v)
	if d.IsNegative() || d.GreaterThan(hundred) {
		return validationError("%s must be between 0 and 100", field)
	}
	return nil
}

// normalizeSigners validates signer input and fills the default signature type.
func normalizeSigners(signers []model.Signer) ([]model.Signer, error) {
	if len(signers) == 0 {
		return nil, validationError("at least one signer is required")
	}
	seen := make(map[string]struct{}, len(signers))
	out := make([]model.Signer, 0, len(signers))
	for i, s := range signers {
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			return nil, validationError("signer %d: name is required", i+1)
		}
		addr, err := mail.ParseAddress(strings.TrimSpace(s.Email))
		if err != nil {
			return nil, validationError("signer %d: invalid email", i+1)
		}
		s.Email = strings.ToLower(addr.Address)
		if _, dup := seen[s.Email]; dup {
			return nil, validationError("signer %d: duplicate email %s", i+1, s.Email)
		}
		seen[s.Email] = struct{}{}
		if !s.Role.Valid() {
			return nil, validationError("signer %d: invalid role %q", i+1, s.Role)
		}
		if s.SignatureType == "" {
			s.SignatureType = model.SignatureTypeElectronic
		}
		if !s.SignatureType.Valid() {
			return nil, validationError("signer %d: invalid signature_type %q", i+1, s.SignatureType)
		}
		out = append(out, s)
	}
	return out, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
