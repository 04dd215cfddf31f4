package signature

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/snowops-contracts/internal/model"
)

const (
	DocusignName            = "docusign"
	docusignSignatureHeader = "X-DocuSign-Signature-1"
)

type Docusign struct {
	client        *apiClient
	webhookSecret string
}

func NewDocusign(apiURL, apiKey, webhookSecret string, timeout time.Duration) *Docusign {
	return &Docusign{
		client:        newAPIClient(apiURL, apiKey, timeout),
		webhookSecret: webhookSecret,
	}
}

func (p *Docusign) Name() string { return DocusignName }

type docusignRecipient struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	RecipientID  string `json:"recipientId"`
	RoutingOrder string `json:"routingOrder"`
	RoleName     string `json:"roleName"`
}

type docusignCustomField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type docusignDocument struct {
	DocumentID     string `json:"documentId"`
	Name           string `json:"name"`
	DocumentBase64 string `json:"documentBase64,omitempty"`
	RemoteURL      string `json:"remoteUrl,omitempty"`
}

type docusignEnvelopeRequest struct {
	EmailSubject string             `json:"emailSubject"`
	Status       string             `json:"status"`
	Documents    []docusignDocument `json:"documents"`
	Recipients   struct {
		Signers []docusignRecipient `json:"signers"`
	} `json:"recipients"`
	CustomFields struct {
		TextCustomFields []docusignCustomField `json:"textCustomFields"`
	} `json:"customFields"`
}

type docusignEnvelopeResponse struct {
	EnvelopeID string `json:"envelopeId"`
	URL        string `json:"url"`
}

func (p *Docusign) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	body := docusignEnvelopeRequest{
		EmailSubject: req.Contract.Title,
		Status:       "sent",
	}
	if req.Document != nil {
		doc := docusignDocument{DocumentID: "1", Name: req.Document.FileName, RemoteURL: req.Document.URL}
		if req.Document.URL == "" {
			doc.DocumentBase64 = base64.StdEncoding.EncodeToString(req.Document.Content)
		}
		body.Documents = append(body.Documents, doc)
	}
	for i, s := range req.Signers {
		body.Recipients.Signers = append(body.Recipients.Signers, docusignRecipient{
			Email:        s.Email,
			Name:         s.Name,
			RecipientID:  strconv.Itoa(i + 1),
			RoutingOrder: "1",
			RoleName:     string(s.Role),
		})
	}
	body.CustomFields.TextCustomFields = []docusignCustomField{
		{Name: "contract_id", Value: req.Contract.ID.String()},
		{Name: "tenant_id", Value: req.Contract.TenantID.String()},
	}

	var resp docusignEnvelopeResponse
	if err := p.client.postJSON(ctx, "/envelopes", body, &resp); err != nil {
		return SendResult{}, fmt.Errorf("docusign send: %w", err)
	}
	if resp.EnvelopeID == "" {
		return SendResult{}, fmt.Errorf("docusign send: empty envelope id")
	}
	return SendResult{SignatureURL: resp.URL, ProcessID: resp.EnvelopeID}, nil
}

// VerifySignature checks the base64 HMAC-SHA256 carried by DocuSign Connect.
func (p *Docusign) VerifySignature(payload []byte, headers http.Header) error {
	if !verifyBase64(p.webhookSecret, payload, headers.Get(docusignSignatureHeader)) {
		return ErrInvalidSignature
	}
	return nil
}

type docusignWebhook struct {
	Event             string `json:"event"`
	GeneratedDateTime string `json:"generatedDateTime"`
	Data              struct {
		EnvelopeID string `json:"envelopeId"`
		Recipient  struct {
			Email        string `json:"email"`
			DeclinedText string `json:"declinedReason"`
		} `json:"recipient"`
		CustomFields map[string]string `json:"customFields"`
	} `json:"data"`
}

func (p *Docusign) DecodeWebhook(payload []byte) (WebhookEvent, error) {
	var hook docusignWebhook
	if err := json.Unmarshal(payload, &hook); err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: malformed docusign payload: %v", ErrIgnoredEvent, err)
	}

	var status model.SignatureStatus
	switch hook.Event {
	case "recipient-completed":
		status = model.SignatureStatusSigned
	case "recipient-declined":
		status = model.SignatureStatusRejected
	case "envelope-voided", "recipient-authenticationfailed":
		status = model.SignatureStatusExpired
	default:
		return WebhookEvent{}, fmt.Errorf("%w: docusign event %q", ErrIgnoredEvent, hook.Event)
	}

	contractID, err := uuid.Parse(hook.Data.CustomFields["contract_id"])
	if err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: docusign payload without contract_id", ErrIgnoredEvent)
	}
	email := strings.TrimSpace(hook.Data.Recipient.Email)
	if email == "" {
		return WebhookEvent{}, fmt.Errorf("%w: docusign payload without recipient", ErrIgnoredEvent)
	}
	tenantID, _ := uuid.Parse(hook.Data.CustomFields["tenant_id"])

	return WebhookEvent{
		EventID:       strings.Join([]string{hook.Data.EnvelopeID, email, hook.Event, hook.GeneratedDateTime}, ":"),
		ProcessID:     hook.Data.EnvelopeID,
		ContractID:    contractID,
		TenantID:      tenantID,
		SignerEmail:   email,
		Status:        status,
		SignatureData: hook.Data.Recipient.DeclinedText,
	}, nil
}
