package http

//go:generate mockgen -source=usecases.go -destination=mocks/mock_usecases.go -package=mock_http

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/nurpe/snowops-contracts/internal/model"
	"github.com/nurpe/snowops-contracts/internal/service"
)

type ContractUseCase interface {
	Create(ctx context.Context, input service.CreateContractInput) (*model.Contract, error)
	Update(ctx context.Context, input service.UpdateContractInput) (*model.Contract, error)
	Get(ctx context.Context, principal model.Principal, id uuid.UUID) (*service.ContractDetails, error)
	Transition(ctx context.Context, input service.TransitionInput) (*model.Contract, error)
	Search(ctx context.Context, principal model.Principal, filter model.ContractFilter) (*service.SearchResult, error)
	History(ctx context.Context, principal model.Principal, id uuid.UUID) ([]model.Contract, error)
	CreateVersion(ctx context.Context, input service.CreateVersionInput) (*model.Contract, error)
}

type SignatureUseCase interface {
	InitiateSignature(ctx context.Context, input service.InitiateSignatureInput) (*service.InitiateSignatureResult, error)
	ReconcileWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) (*service.WebhookOutcome, error)
	SigningProgress(ctx context.Context, principal model.Principal, contractID uuid.UUID) (*model.SigningProgress, error)
}

type RenewalUseCase interface {
	ScheduleRenewal(ctx context.Context, input service.ScheduleRenewalInput) (*model.ContractRenewal, error)
	ProcessPendingRenewals(ctx context.Context) (*model.RenewalRunSummary, error)
}

type AnalyticsUseCase interface {
	Generate(ctx context.Context, principal model.Principal, horizonDays *int) (*model.ContractAnalytics, error)
	Export(ctx context.Context, principal model.Principal, filter model.ContractFilter) (*service.ExportResult, error)
}
