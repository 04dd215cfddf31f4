// Package signature holds the electronic signature provider adapters.
// Each adapter sends contracts out for signing and turns the provider's
// webhook payload into a WebhookEvent.
package signature

//go:generate mockgen -source=provider.go -destination=mocks/mock_provider.go -package=mock_signature

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/nurpe/snowops-contracts/internal/model"
)

var (
	ErrUnknownProvider  = errors.New("unknown signature provider")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrIgnoredEvent marks payloads that are authentic but carry nothing to reconcile.
	ErrIgnoredEvent = errors.New("webhook event ignored")
)

// Document is the rendered contract handed to the provider.
type Document struct {
	FileName string
	Content  []byte
	URL      string
	Hash     string
}

type SendRequest struct {
	Contract model.Contract
	Signers  []model.Signer
	Document *Document
}

type SendResult struct {
	SignatureURL string `json:"signature_url"`
	ProcessID    string `json:"process_id"`
}

// WebhookEvent is the provider independent form of a signer status callback.
type WebhookEvent struct {
	EventID       string
	ProcessID     string
	ContractID    uuid.UUID
	TenantID      uuid.UUID
	SignerEmail   string
	Status        model.SignatureStatus
	SignatureData string
}

type Provider interface {
	Name() string
	Send(ctx context.Context, req SendRequest) (SendResult, error)
	VerifySignature(payload []byte, headers http.Header) error
	DecodeWebhook(payload []byte) (WebhookEvent, error)
}

type Registry struct {
	providers   map[string]Provider
	defaultName string
}

func NewRegistry(defaultName string, providers ...Provider) *Registry {
	r := &Registry{
		providers:   make(map[string]Provider, len(providers)),
		defaultName: normalizeName(defaultName),
	}
	for _, p := range providers {
		r.providers[normalizeName(p.Name())] = p
	}
	return r
}

// Get resolves a provider by name. An empty name selects the default.
func (r *Registry) Get(name string) (Provider, error) {
	name = normalizeName(name)
	if name == "" {
		name = r.defaultName
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return p, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
