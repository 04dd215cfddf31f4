package signature

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/snowops-contracts/internal/model"
)

const (
	SandboxName            = "sandbox"
	sandboxSignatureHeader = "X-Sandbox-Signature"
	sandboxBaseURL         = "https://sandbox.sign.local"
)

// Sandbox signs nothing. It hands out deterministic URLs and accepts a
// plain normalized webhook body, for local development and demos.
type Sandbox struct {
	secret string
}

// NewSandbox builds the sandbox provider. With an empty secret every
// webhook is accepted, which config only allows in development.
func NewSandbox(secret string) *Sandbox {
	return &Sandbox{secret: secret}
}

func (p *Sandbox) Name() string { return SandboxName }

func (p *Sandbox) Send(_ context.Context, req SendRequest) (SendResult, error) {
	processID := "sandbox-" + req.Contract.ID.String()
	return SendResult{
		SignatureURL: fmt.Sprintf("%s/sign/%s", sandboxBaseURL, processID),
		ProcessID:    processID,
	}, nil
}

func (p *Sandbox) VerifySignature(payload []byte, headers http.Header) error {
	if p.secret == "" {
		return nil
	}
	if !verifyHex(p.secret, payload, headers.Get(sandboxSignatureHeader)) {
		return ErrInvalidSignature
	}
	return nil
}

type sandboxWebhook struct {
	EventID       string `json:"event_id"`
	ProcessID     string `json:"process_id"`
	ContractID    string `json:"contract_id"`
	TenantID      string `json:"tenant_id"`
	SignerEmail   string `json:"signer_email"`
	Status        string `json:"status"`
	SignatureData string `json:"signature_data"`
}

func (p *Sandbox) DecodeWebhook(payload []byte) (WebhookEvent, error) {
	var hook sandboxWebhook
	if err := json.Unmarshal(payload, &hook); err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: malformed sandbox payload: %v", ErrIgnoredEvent, err)
	}
	contractID, err := uuid.Parse(hook.ContractID)
	if err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: sandbox payload without contract_id", ErrIgnoredEvent)
	}
	status := model.SignatureStatus(strings.ToUpper(strings.TrimSpace(hook.Status)))
	if !status.Valid() || status == model.SignatureStatusPending {
		return WebhookEvent{}, fmt.Errorf("%w: sandbox status %q", ErrIgnoredEvent, hook.Status)
	}
	email := strings.TrimSpace(hook.SignerEmail)
	if email == "" {
		return WebhookEvent{}, fmt.Errorf("%w: sandbox payload without signer", ErrIgnoredEvent)
	}
	tenantID, _ := uuid.Parse(hook.TenantID)

	eventID := hook.EventID
	if eventID == "" {
		eventID = strings.Join([]string{hook.ContractID, email, string(status)}, ":")
	}
	return WebhookEvent{
		EventID:       eventID,
		ProcessID:     hook.ProcessID,
		ContractID:    contractID,
		TenantID:      tenantID,
		SignerEmail:   email,
		Status:        status,
		SignatureData: hook.SignatureData,
	}, nil
}
