package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/snowops-contracts/internal/lifecycle"
	"github.com/nurpe/snowops-contracts/internal/model"
	"github.com/nurpe/snowops-contracts/internal/repository"
	"github.com/nurpe/snowops-contracts/internal/signature"
	"github.com/nurpe/snowops-contracts/internal/storage"
)

const pdfContentType = "application/pdf"

// SignatureService sends contracts out for signing and reconciles the
// provider callbacks.
type SignatureService struct {
	store     repository.Store
	providers *signature.Registry
	renderer  DocumentRenderer
	documents DocumentStore
	audit     auditor
	clock     Clock
	log       zerolog.Logger
}

type InitiateSignatureInput struct {
	Principal  model.Principal
	ContractID uuid.UUID
	Provider   string
	Signers    []model.Signer
}

type InitiateSignatureResult struct {
	Provider     string `json:"provider"`
	SignatureURL string `json:"signature_url"`
	ProcessID    string `json:"process_id"`
	DocumentURL  string `json:"document_url,omitempty"`
	DocumentHash string `json:"document_hash,omitempty"`
}

// WebhookOutcome describes what a provider callback changed.
type WebhookOutcome struct {
	Provider    string                `json:"provider"`
	EventID     string                `json:"event_id,omitempty"`
	ContractID  uuid.UUID             `json:"contract_id"`
	SignerEmail string                `json:"signer_email,omitempty"`
	Status      model.SignatureStatus `json:"status,omitempty"`
	Ignored     bool                  `json:"ignored"`
	Duplicate   bool                  `json:"duplicate"`
	Activated   bool                  `json:"activated"`
	RenewalID   *uuid.UUID            `json:"renewal_id,omitempty"`
}

// NewSignatureService wires the orchestrator. documents may be nil, in which
// case rendered documents are hashed and handed to the provider but not stored.
func NewSignatureService(
	store repository.Store,
	providers *signature.Registry,
	renderer DocumentRenderer,
	documents DocumentStore,
	audit AuditSink,
	clock Clock,
	log zerolog.Logger,
) *SignatureService {
	if clock == nil {
		clock = SystemClock()
	}
	return &SignatureService{
		store:     store,
		providers: providers,
		renderer:  renderer,
		documents: documents,
		audit:     auditor{sink: audit, clock: clock, log: log},
		clock:     clock,
		log:       log,
	}
}

func (s *SignatureService) InitiateSignature(ctx context.Context, input InitiateSignatureInput) (*InitiateSignatureResult, error) {
	if !input.Principal.CanWrite() {
		return nil, ErrPermissionDenied
	}
	signers, err := normalizeSigners(input.Signers)
	if err != nil {
		return nil, err
	}
	provider, err := s.providers.Get(input.Provider)
	if err != nil {
		return nil, validationError("%v", err)
	}

	var contract model.Contract
	var sentProcess, documentKey string
	result := &InitiateSignatureResult{Provider: provider.Name()}
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		current, err := lockTenantContract(ctx, tx, input.Principal.TenantID, input.ContractID)
		if err != nil {
			return err
		}
		if !lifecycle.CanInitiateSignature(current.Status) {
			return fmt.Errorf("%w: signatures can only be requested in %s, contract is %s",
				ErrInvalidState, model.ContractStatusPendingSignature, current.Status)
		}
		if len(current.Signatures) > 0 || storedProcess(current.Metadata) != "" {
			return fmt.Errorf("%w: a signature process was already started for contract %s",
				ErrInvalidState, current.ID)
		}
		contract = current.Clone()
		now := s.clock.Now()

		pending := make([]model.Signature, 0, len(signers))
		for _, signer := range signers {
			pending = append(pending, model.Signature{
				ContractID:    contract.ID,
				SignerID:      signer.SignerID,
				SignerName:    signer.Name,
				SignerEmail:   signer.Email,
				SignerRole:    signer.Role,
				SignatureType: signer.SignatureType,
				Status:        model.SignatureStatusPending,
				CreatedAt:     now,
			})
		}
		if err := tx.CreateSignatures(ctx, pending); err != nil {
			return storeError("create signatures", err)
		}
		contract.Signatures = append(contract.Signatures, pending...)

		document, key, err := s.prepareDocument(ctx, contract, signers)
		if err != nil {
			return err
		}
		documentKey = key

		sent, err := provider.Send(ctx, signature.SendRequest{
			Contract: contract,
			Signers:  signers,
			Document: document,
		})
		if err != nil {
			return dependencyError("send to "+provider.Name(), err)
		}
		sentProcess = sent.ProcessID

		if contract.Metadata == nil {
			contract.Metadata = map[string]any{}
		}
		contract.Metadata[model.MetadataSignatureProvider] = provider.Name()
		contract.Metadata[model.MetadataSignatureProcessID] = sent.ProcessID
		if document != nil {
			contract.DocumentURL = document.URL
			contract.DocumentHash = document.Hash
		}
		actor := input.Principal.UserID
		contract.UpdatedBy = &actor
		contract.UpdatedAt = &now

		ok, err := tx.UpdateContract(ctx, &contract, model.ContractStatusPendingSignature)
		if err != nil {
			return storeError("record signature process", err)
		}
		if !ok {
			return fmt.Errorf("%w: contract %s changed concurrently", ErrConflict, contract.ID)
		}

		result.SignatureURL = sent.SignatureURL
		result.ProcessID = sent.ProcessID
		result.DocumentURL = contract.DocumentURL
		result.DocumentHash = contract.DocumentHash
		return nil
	})
	if err != nil {
		s.discardInitiation(ctx, input.ContractID, provider.Name(), sentProcess, documentKey, err)
		return nil, err
	}

	emails := make([]string, 0, len(signers))
	for _, signer := range signers {
		emails = append(emails, signer.Email)
	}
	entry := contractEntry(&contract, input.Principal.UserID, model.AuditActionSignatureInitiated, model.RiskLevelHigh)
	entry.Metadata = map[string]any{
		"provider":   provider.Name(),
		"process_id": result.ProcessID,
		"signers":    emails,
	}
	s.audit.record(ctx, entry)

	s.log.Info().
		Str("contract_id", contract.ID.String()).
		Str("tenant_id", contract.TenantID.String()).
		Str("provider", provider.Name()).
		Str("process_id", result.ProcessID).
		Int("signers", len(signers)).
		Msg("signature process started")
	return result, nil
}

// prepareDocument renders the contract and, when a document store is
// configured, uploads it. The returned key is empty unless an object was stored.
func (s *SignatureService) prepareDocument(ctx context.Context, contract model.Contract, signers []model.Signer) (*signature.Document, string, error) {
	if s.renderer == nil {
		return nil, "", nil
	}
	content, err := s.renderer.Generate(contract, signers)
	if err != nil {
		return nil, "", dependencyError("render contract document", err)
	}
	sum := sha256.Sum256(content)
	document := &signature.Document{
		FileName: fmt.Sprintf("contrato-%s-v%d.pdf", contract.ContractNumber, contract.Version),
		Content:  content,
		Hash:     hex.EncodeToString(sum[:]),
	}
	if s.documents != nil {
		key := storage.ObjectKey(contract.TenantID.String(), contract.ID.String(), contract.Version)
		url, err := s.documents.Put(ctx, key, content, pdfContentType)
		if err != nil {
			return nil, "", dependencyError("store contract document", err)
		}
		document.URL = url
		return document, key, nil
	}
	return document, "", nil
}

// discardInitiation cleans up after an initiation whose transaction did not
// commit. A process already sent cannot be recalled from here and is logged
// so it can be voided at the provider.
func (s *SignatureService) discardInitiation(ctx context.Context, contractID uuid.UUID, provider, processID, documentKey string, cause error) {
	ctx = context.WithoutCancel(ctx)
	if documentKey != "" && s.documents != nil {
		if err := s.documents.Delete(ctx, documentKey); err != nil {
			s.log.Warn().
				Err(err).
				Str("contract_id", contractID.String()).
				Str("document_key", documentKey).
				Msg("failed to remove orphaned contract document")
		}
	}
	if processID != "" {
		s.log.Error().
			Err(cause).
			Str("contract_id", contractID.String()).
			Str("provider", provider).
			Str("process_id", processID).
			Msg("signature process sent but not recorded, void it at the provider")
	}
}

// ReconcileWebhook applies one provider callback. Unauthentic payloads fail
// with ErrUnauthorizedWebhook and change nothing. Repeated deliveries are
// reported as duplicates.
func (s *SignatureService) ReconcileWebhook(ctx context.Context, providerName string, payload []byte, headers http.Header) (*WebhookOutcome, error) {
	provider, err := s.providers.Get(providerName)
	if err != nil || strings.TrimSpace(providerName) == "" {
		s.rejectWebhook(ctx, providerName, "unknown provider")
		return nil, fmt.Errorf("%w: unknown provider %q", ErrUnauthorizedWebhook, providerName)
	}
	if err := provider.VerifySignature(payload, headers); err != nil {
		s.rejectWebhook(ctx, provider.Name(), err.Error())
		return nil, fmt.Errorf("%w: %v", ErrUnauthorizedWebhook, err)
	}

	outcome := &WebhookOutcome{Provider: provider.Name()}
	event, err := provider.DecodeWebhook(payload)
	if err != nil {
		s.log.Info().
			Err(err).
			Str("provider", provider.Name()).
			Msg("webhook event ignored")
		outcome.Ignored = true
		return outcome, nil
	}
	outcome.EventID = event.EventID
	outcome.ContractID = event.ContractID
	outcome.SignerEmail = strings.ToLower(event.SignerEmail)
	outcome.Status = event.Status

	var contract model.Contract
	var previous model.SignatureStatus
	now := s.clock.Now()
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		current, err := tx.LockContract(ctx, event.ContractID)
		if err != nil {
			return storeError("lock contract", err)
		}
		if event.TenantID != uuid.Nil && event.TenantID != current.TenantID {
			return fmt.Errorf("%w: contract %s", ErrNotFound, event.ContractID)
		}
		if !sameProcess(current.Metadata, event.ProcessID) {
			return fmt.Errorf("%w: process %s does not belong to contract %s", ErrNotFound, event.ProcessID, event.ContractID)
		}
		contract = current.Clone()

		idx := findSigner(contract.Signatures, event.SignerEmail)
		if idx < 0 {
			return fmt.Errorf("%w: signer %s on contract %s", ErrNotFound, event.SignerEmail, event.ContractID)
		}
		sig := &contract.Signatures[idx]
		previous = sig.Status

		if sig.Status != model.SignatureStatusPending || sig.Status == event.Status {
			outcome.Duplicate = true
		} else {
			update := repository.SignatureUpdate{
				ContractID:    contract.ID,
				SignerEmail:   sig.SignerEmail,
				Status:        event.Status,
				SignatureData: event.SignatureData,
			}
			if event.Status == model.SignatureStatusSigned {
				signedAt := now
				update.SignedAt = &signedAt
			}
			changed, err := tx.UpdateSignatureStatus(ctx, update)
			if err != nil {
				return dependencyError("update signature", err)
			}
			if !changed {
				outcome.Duplicate = true
			} else {
				sig.Status = update.Status
				sig.SignatureData = update.SignatureData
				sig.SignedAt = update.SignedAt
			}
		}

		if !lifecycle.ShouldActivate(contract.Status, contract.Signatures) {
			return nil
		}
		signedAt := now
		contract.Status = model.ContractStatusActive
		contract.SignatureDate = &signedAt
		contract.UpdatedAt = &signedAt
		ok, err := tx.UpdateContract(ctx, &contract, model.ContractStatusPendingSignature)
		if err != nil {
			return storeError("activate contract", err)
		}
		if !ok {
			return fmt.Errorf("%w: contract %s changed concurrently", ErrConflict, contract.ID)
		}
		outcome.Activated = true

		if renewal := termRenewal(contract, now); renewal != nil {
			if err := tx.CreateRenewal(ctx, renewal); err != nil {
				return storeError("schedule renewal", err)
			}
			outcome.RenewalID = &renewal.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !outcome.Duplicate {
		entry := contractEntry(&contract, uuid.Nil, model.AuditActionSignatureUpdated, model.RiskLevelHigh)
		entry.OldValues = map[string]any{"status": string(previous)}
		entry.NewValues = map[string]any{"status": string(event.Status)}
		entry.Metadata = map[string]any{
			"actor":        webhookActor,
			"provider":     provider.Name(),
			"event_id":     event.EventID,
			"signer_email": outcome.SignerEmail,
		}
		s.audit.record(ctx, entry)
	}
	if outcome.Activated {
		entry := contractEntry(&contract, uuid.Nil, model.AuditActionContractSigned, model.RiskLevelHigh)
		entry.OldValues = map[string]any{"status": string(model.ContractStatusPendingSignature)}
		entry.NewValues = contractSnapshot(&contract)
		entry.Metadata = map[string]any{
			"actor":    webhookActor,
			"provider": provider.Name(),
		}
		s.audit.record(ctx, entry)
	}

	s.log.Info().
		Str("contract_id", contract.ID.String()).
		Str("tenant_id", contract.TenantID.String()).
		Str("provider", provider.Name()).
		Str("signer_email", outcome.SignerEmail).
		Str("status", string(event.Status)).
		Bool("duplicate", outcome.Duplicate).
		Bool("activated", outcome.Activated).
		Msg("signature webhook reconciled")
	return outcome, nil
}

func (s *SignatureService) rejectWebhook(ctx context.Context, provider, reason string) {
	s.log.Warn().
		Str("provider", provider).
		Str("reason", reason).
		Msg("webhook rejected")
	s.audit.record(ctx, model.AuditEntry{
		ActionType: model.AuditActionWebhookRejected,
		EntityType: model.AuditEntityWebhook,
		RiskLevel:  model.RiskLevelCritical,
		Metadata: map[string]any{
			"actor":    webhookActor,
			"provider": provider,
			"reason":   reason,
		},
	})
}

// SigningProgress reports how far the signing of a contract has come.
func (s *SignatureService) SigningProgress(ctx context.Context, principal model.Principal, contractID uuid.UUID) (*model.SigningProgress, error) {
	contract, err := s.store.GetContract(ctx, principal.TenantID, contractID)
	if err != nil {
		return nil, storeError("get contract", err)
	}
	progress := model.Progress(contract.Signatures)
	return &progress, nil
}

func findSigner(signatures []model.Signature, email string) int {
	email = strings.ToLower(strings.TrimSpace(email))
	for i, sig := range signatures {
		if strings.ToLower(sig.SignerEmail) == email {
			return i
		}
	}
	return -1
}

// sameProcess is false only when both sides name a process and they differ.
func sameProcess(metadata map[string]any, processID string) bool {
	if processID == "" {
		return true
	}
	stored := storedProcess(metadata)
	if stored == "" {
		return true
	}
	return stored == processID
}

func storedProcess(metadata map[string]any) string {
	id, _ := metadata[model.MetadataSignatureProcessID].(string)
	return id
}
