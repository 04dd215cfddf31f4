package signature

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/snowops-contracts/internal/model"
)

const (
	ClicksignName       = "clicksign"
	clicksignHMACHeader = "Content-Hmac"
	clicksignHMACPrefix = "sha256="
)

type Clicksign struct {
	client        *apiClient
	webhookSecret string
}

func NewClicksign(apiURL, apiKey, webhookSecret string, timeout time.Duration) *Clicksign {
	return &Clicksign{
		client:        newAPIClient(apiURL, apiKey, timeout),
		webhookSecret: webhookSecret,
	}
}

func (p *Clicksign) Name() string { return ClicksignName }

type clicksignSigner struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Sign  string `json:"sign_as"`
	Auth  string `json:"auths"`
}

type clicksignEnvelope struct {
	Title    string            `json:"title"`
	Metadata map[string]string `json:"metadata"`
	Document struct {
		FileName string `json:"filename"`
		Content  string `json:"content_base64,omitempty"`
		URL      string `json:"url,omitempty"`
	} `json:"document"`
	Signers []clicksignSigner `json:"signers"`
}

type clicksignEnvelopeResponse struct {
	Envelope struct {
		Key        string `json:"key"`
		SigningURL string `json:"signing_url"`
	} `json:"envelope"`
}

func (p *Clicksign) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	body := clicksignEnvelope{
		Title: req.Contract.Title,
		Metadata: map[string]string{
			"contract_id":     req.Contract.ID.String(),
			"tenant_id":       req.Contract.TenantID.String(),
			"contract_number": req.Contract.ContractNumber,
		},
	}
	if req.Document != nil {
		body.Document.FileName = req.Document.FileName
		body.Document.URL = req.Document.URL
		if req.Document.URL == "" {
			body.Document.Content = base64.StdEncoding.EncodeToString(req.Document.Content)
		}
	}
	for _, s := range req.Signers {
		body.Signers = append(body.Signers, clicksignSigner{
			Name:  s.Name,
			Email: s.Email,
			Sign:  strings.ToLower(string(s.Role)),
			Auth:  clicksignAuth(s.SignatureType),
		})
	}

	var resp clicksignEnvelopeResponse
	if err := p.client.postJSON(ctx, "/envelopes", body, &resp); err != nil {
		return SendResult{}, fmt.Errorf("clicksign send: %w", err)
	}
	if resp.Envelope.Key == "" {
		return SendResult{}, fmt.Errorf("clicksign send: empty envelope key")
	}
	return SendResult{SignatureURL: resp.Envelope.SigningURL, ProcessID: resp.Envelope.Key}, nil
}

func clicksignAuth(t model.SignatureType) string {
	switch t {
	case model.SignatureTypeSMSToken:
		return "sms"
	case model.SignatureTypeDigitalCertificate:
		return "icp_brasil"
	case model.SignatureTypeBiometric:
		return "biometrics"
	default:
		return "email"
	}
}

// VerifySignature checks the Content-Hmac header, "sha256=<hex>" over the raw body.
func (p *Clicksign) VerifySignature(payload []byte, headers http.Header) error {
	header := strings.TrimSpace(headers.Get(clicksignHMACHeader))
	if !strings.HasPrefix(header, clicksignHMACPrefix) {
		return ErrInvalidSignature
	}
	if !verifyHex(p.webhookSecret, payload, strings.TrimPrefix(header, clicksignHMACPrefix)) {
		return ErrInvalidSignature
	}
	return nil
}

type clicksignWebhook struct {
	Event struct {
		Name       string          `json:"name"`
		OccurredAt string          `json:"occurred_at"`
		Data       json.RawMessage `json:"data"`
	} `json:"event"`
	Document struct {
		Key      string            `json:"key"`
		Metadata map[string]string `json:"metadata"`
	} `json:"document"`
	Signer struct {
		Email     string `json:"email"`
		Signature string `json:"signature"`
	} `json:"signer"`
}

func (p *Clicksign) DecodeWebhook(payload []byte) (WebhookEvent, error) {
	var hook clicksignWebhook
	if err := json.Unmarshal(payload, &hook); err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: malformed clicksign payload: %v", ErrIgnoredEvent, err)
	}

	var status model.SignatureStatus
	switch strings.ToLower(hook.Event.Name) {
	case "sign":
		status = model.SignatureStatusSigned
	case "refusal":
		status = model.SignatureStatusRejected
	case "deadline", "cancel":
		status = model.SignatureStatusExpired
	default:
		return WebhookEvent{}, fmt.Errorf("%w: clicksign event %q", ErrIgnoredEvent, hook.Event.Name)
	}

	contractID, err := uuid.Parse(hook.Document.Metadata["contract_id"])
	if err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: clicksign payload without contract_id", ErrIgnoredEvent)
	}
	email := strings.TrimSpace(hook.Signer.Email)
	if email == "" {
		return WebhookEvent{}, fmt.Errorf("%w: clicksign payload without signer", ErrIgnoredEvent)
	}
	tenantID, _ := uuid.Parse(hook.Document.Metadata["tenant_id"])

	return WebhookEvent{
		EventID:       strings.Join([]string{hook.Document.Key, email, hook.Event.Name, hook.Event.OccurredAt}, ":"),
		ProcessID:     hook.Document.Key,
		ContractID:    contractID,
		TenantID:      tenantID,
		SignerEmail:   email,
		Status:        status,
		SignatureData: hook.Signer.Signature,
	}, nil
}
