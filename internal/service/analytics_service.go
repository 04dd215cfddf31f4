package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/snowops-contracts/internal/analytics"
	"github.com/nurpe/snowops-contracts/internal/config"
	"github.com/nurpe/snowops-contracts/internal/model"
	"github.com/nurpe/snowops-contracts/internal/repository"
)

const (
	exportPageSize     = 500
	maxExportContracts = 50000
)

type AnalyticsService struct {
	store repository.Store
	excel ExcelGenerator
	clock Clock
	cfg   config.ContractsConfig
	log   zerolog.Logger
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func NewAnalyticsService(store repository.Store, excel ExcelGenerator, clock Clock, cfg config.ContractsConfig, log zerolog.Logger) *AnalyticsService {
	if clock == nil {
		clock = SystemClock()
	}
	return &AnalyticsService{
		store: store,
		excel: excel,
		clock: clock,
		cfg:   cfg,
		log:   log,
	}
}

// Generate rolls up every contract of the caller's tenant. horizonDays
// overrides the configured expiring-soon window when set.
func (s *AnalyticsService) Generate(ctx context.Context, principal model.Principal, horizonDays *int) (*model.ContractAnalytics, error) {
	horizon, err := s.horizon(horizonDays)
	if err != nil {
		return nil, err
	}

	contracts, err := s.store.ListContracts(ctx, principal.TenantID)
	if err != nil {
		return nil, dependencyError("list contracts", err)
	}
	renewals, err := s.store.ListRenewals(ctx, principal.TenantID)
	if err != nil {
		return nil, dependencyError("list renewals", err)
	}

	result := analytics.Compute(contracts, renewals, s.clock.Now(), horizon)
	return &result, nil
}

// Export renders the contracts matching filter, with their rollup, as a spreadsheet.
func (s *AnalyticsService) Export(ctx context.Context, principal model.Principal, filter model.ContractFilter) (*ExportResult, error) {
	if s.excel == nil {
		return nil, fmt.Errorf("%w: export is not configured", ErrDependencyFailure)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, validationError("invalid status %q", filter.Status)
	}
	if filter.ContractType != "" && !filter.ContractType.Valid() {
		return nil, validationError("invalid contract_type %q", filter.ContractType)
	}
	filter.TenantID = principal.TenantID

	var contracts []model.Contract
	page := filter
	page.Limit = exportPageSize
	page.Offset = 0
	for len(contracts) < maxExportContracts {
		items, total, err := s.store.SearchContracts(ctx, page)
		if err != nil {
			return nil, dependencyError("search contracts", err)
		}
		contracts = append(contracts, items...)
		page.Offset += len(items)
		if len(items) < page.Limit || int64(page.Offset) >= total {
			break
		}
	}

	renewals, err := s.store.ListRenewals(ctx, principal.TenantID)
	if err != nil {
		return nil, dependencyError("list renewals", err)
	}

	horizon, err := s.horizon(nil)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	report := model.ContractReport{
		TenantID:    principal.TenantID,
		GeneratedAt: now,
		Filter:      filter,
		Contracts:   contracts,
		Analytics:   analytics.Compute(contracts, renewals, now, horizon),
	}

	content, err := s.excel.Generate(report)
	if err != nil {
		return nil, dependencyError("render export", err)
	}

	s.log.Info().
		Str("tenant_id", principal.TenantID.String()).
		Int("contracts", len(contracts)).
		Msg("contracts exported")
	return &ExportResult{
		FileName: fmt.Sprintf("contratos_%s.xlsx", now.Format("20060102_150405")),
		Content:  content,
	}, nil
}

func (s *AnalyticsService) horizon(days *int) (time.Duration, error) {
	n := s.cfg.ExpiringHorizonDays
	if days != nil {
		if *days < 0 {
			return 0, validationError("horizon_days must not be negative")
		}
		n = *days
	}
	if n == 0 {
		return analytics.DefaultHorizon, nil
	}
	return time.Duration(n) * 24 * time.Hour, nil
}
