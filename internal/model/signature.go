package model

import (
	"time"

	"github.com/google/uuid"
)

type SignerRole string

const (
	SignerRoleContractor          SignerRole = "CONTRACTOR"
	SignerRoleContractee          SignerRole = "CONTRACTEE"
	SignerRoleWitness             SignerRole = "WITNESS"
	SignerRoleLegalRepresentative SignerRole = "LEGAL_REPRESENTATIVE"
	SignerRoleGuarantor           SignerRole = "GUARANTOR"
)

func (r SignerRole) Valid() bool {
	switch r {
	case SignerRoleContractor, SignerRoleContractee, SignerRoleWitness,
		SignerRoleLegalRepresentative, SignerRoleGuarantor:
		return true
	}
	return false
}

type SignatureType string

const (
	SignatureTypeElectronic         SignatureType = "ELECTRONIC"
	SignatureTypeDigitalCertificate SignatureType = "DIGITAL_CERTIFICATE"
	SignatureTypeBiometric          SignatureType = "BIOMETRIC"
	SignatureTypeSMSToken           SignatureType = "SMS_TOKEN"
	SignatureTypeEmailConfirmation  SignatureType = "EMAIL_CONFIRMATION"
)

func (t SignatureType) Valid() bool {
	switch t {
	case SignatureTypeElectronic, SignatureTypeDigitalCertificate, SignatureTypeBiometric,
		SignatureTypeSMSToken, SignatureTypeEmailConfirmation:
		return true
	}
	return false
}

type SignatureStatus string

const (
	SignatureStatusPending  SignatureStatus = "PENDING"
	SignatureStatusSigned   SignatureStatus = "SIGNED"
	SignatureStatusRejected SignatureStatus = "REJECTED"
	SignatureStatusExpired  SignatureStatus = "EXPIRED"
)

func (s SignatureStatus) Valid() bool {
	switch s {
	case SignatureStatusPending, SignatureStatusSigned, SignatureStatusRejected, SignatureStatusExpired:
		return true
	}
	return false
}

type CertificateInfo struct {
	Issuer       string    `json:"issuer"`
	Subject      string    `json:"subject"`
	SerialNumber string    `json:"serial_number"`
	ValidFrom    time.Time `json:"valid_from"`
	ValidTo      time.Time `json:"valid_to"`
	Fingerprint  string    `json:"fingerprint"`
}

type Signature struct {
	ID              uuid.UUID        `json:"id"`
	ContractID      uuid.UUID        `json:"contract_id"`
	SignerID        *uuid.UUID       `json:"signer_id,omitempty"`
	SignerName      string           `json:"signer_name"`
	SignerEmail     string           `json:"signer_email"`
	SignerRole      SignerRole       `json:"signer_role"`
	SignatureType   SignatureType    `json:"signature_type"`
	Status          SignatureStatus  `json:"status"`
	SignatureData   string           `json:"signature_data,omitempty"`
	SignedAt        *time.Time       `json:"signed_at,omitempty"`
	IPAddress       string           `json:"ip_address,omitempty"`
	UserAgent       string           `json:"user_agent,omitempty"`
	CertificateInfo *CertificateInfo `json:"certificate_info,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Signer is the input describing one required signer.
type Signer struct {
	SignerID      *uuid.UUID    `json:"signer_id,omitempty"`
	Name          string        `json:"name"`
	Email         string        `json:"email"`
	Role          SignerRole    `json:"role"`
	SignatureType SignatureType `json:"signature_type"`
}

type SigningProgress struct {
	TotalSignatories int     `json:"total_signatories"`
	SignedCount      int     `json:"signed_count"`
	PendingCount     int     `json:"pending_count"`
	PercentComplete  float64 `json:"percent_complete"`
}

// Progress summarises the signing state of a set of signatures.
func Progress(signatures []Signature) SigningProgress {
	p := SigningProgress{TotalSignatories: len(signatures)}
	for _, sig := range signatures {
		switch sig.Status {
		case SignatureStatusSigned:
			p.SignedCount++
		case SignatureStatusPending:
			p.PendingCount++
		}
	}
	if p.TotalSignatories > 0 {
		p.PercentComplete = float64(p.SignedCount) * 100 / float64(p.TotalSignatories)
	}
	return p
}

// AllSigned reports whether a non-empty set of signatures is fully executed.
func AllSigned(signatures []Signature) bool {
	if len(signatures) == 0 {
		return false
	}
	for _, sig := range signatures {
		if sig.Status != SignatureStatusSigned {
			return false
		}
	}
	return true
}
