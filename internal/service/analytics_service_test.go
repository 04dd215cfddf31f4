package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/nurpe/snowops-contracts/internal/model"
	"github.com/nurpe/snowops-contracts/internal/service"
	mock_service "github.com/nurpe/snowops-contracts/internal/service/mocks"
)

func withValue(v int64) func(*model.Contract) {
	return func(c *model.Contract) { c.TotalValue = decimal.NewFromInt(v) }
}

func analyticsFixture(t *testing.T) *memStore {
	t.Helper()
	store := newMemStore()
	expiring := march.AddDate(0, 0, 10)
	seedContract(t, store, tenantA, model.ContractStatusActive, withValue(600), func(c *model.Contract) {
		c.EndDate = &expiring
	})
	seedContract(t, store, tenantA, model.ContractStatusPendingSignature, withValue(400))
	seedContract(t, store, tenantA, model.ContractStatusDraft, withValue(0))
	seedContract(t, store, tenantB, model.ContractStatusActive, withValue(99999))
	return store
}

func TestGenerateAnalytics(t *testing.T) {
	store := analyticsFixture(t)
	svc := service.NewAnalyticsService(store, nil, newClock(march), contractsConfig(), nopLog)

	got, err := svc.Generate(context.Background(), viewer(tenantA), nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got.TotalContracts != 3 || got.ActiveContracts != 1 || got.PendingSignatures != 1 {
		t.Fatalf("counts %+v", got)
	}
	if !got.TotalValue.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("total value %s", got.TotalValue)
	}
	if want := decimal.RequireFromString("333.33"); !got.AverageContractValue.Equal(want) {
		t.Fatalf("average %s, want %s", got.AverageContractValue, want)
	}
	if got.ExpiringSoon != 1 || got.HorizonDays != 30 {
		t.Fatalf("expiring %d within %d days", got.ExpiringSoon, got.HorizonDays)
	}
	if got.RenewalRate != nil {
		t.Fatalf("renewal rate should be undefined, got %v", *got.RenewalRate)
	}
	if got.ContractsByStatus[model.ContractStatusDraft] != 1 || got.ContractsByType[model.ContractTypeSoftwareLicense] != 3 {
		t.Fatalf("breakdowns %v %v", got.ContractsByStatus, got.ContractsByType)
	}
}

func TestGenerateAnalyticsHorizon(t *testing.T) {
	store := analyticsFixture(t)
	svc := service.NewAnalyticsService(store, nil, newClock(march), contractsConfig(), nopLog)

	cases := []struct {
		name     string
		days     *int
		horizon  int
		expiring int
		err      error
	}{
		{name: "configured", horizon: 30, expiring: 1},
		{name: "narrow", days: ptr(7), horizon: 7, expiring: 0},
		{name: "zero falls back", days: ptr(0), horizon: 30, expiring: 1},
		{name: "negative", days: ptr(-1), err: service.ErrValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.Generate(context.Background(), manager(tenantA), tc.days)
			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("expected %v, got %v", tc.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if got.HorizonDays != tc.horizon || got.ExpiringSoon != tc.expiring {
				t.Fatalf("horizon %d expiring %d", got.HorizonDays, got.ExpiringSoon)
			}
		})
	}
}

func TestGenerateAnalyticsStoreFailure(t *testing.T) {
	store := analyticsFixture(t)
	store.failOn("ListRenewals", errors.New("timeout"))
	svc := service.NewAnalyticsService(store, nil, newClock(march), contractsConfig(), nopLog)
	if _, err := svc.Generate(context.Background(), manager(tenantA), nil); !errors.Is(err, service.ErrDependencyFailure) {
		t.Fatalf("expected ErrDependencyFailure, got %v", err)
	}
}

func TestExportContracts(t *testing.T) {
	const n = 501
	store := newMemStore()
	for i := 0; i < n; i++ {
		seedContract(t, store, tenantA, model.ContractStatusActive, withNumber(fmt.Sprintf("202402%04d", i+1)))
	}
	seedContract(t, store, tenantB, model.ContractStatusActive)

	ctrl := gomock.NewController(t)
	excel := mock_service.NewMockExcelGenerator(ctrl)
	var captured model.ContractReport
	excel.EXPECT().
		Generate(gomock.Any()).
		DoAndReturn(func(report model.ContractReport) ([]byte, error) {
			captured = report
			return []byte("xlsx"), nil
		})

	svc := service.NewAnalyticsService(store, excel, newClock(march), contractsConfig(), nopLog)
	res, err := svc.Export(context.Background(), viewer(tenantA), model.ContractFilter{TenantID: tenantB})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.FileName != "contratos_20240315_103000.xlsx" || string(res.Content) != "xlsx" {
		t.Fatalf("unexpected export %q", res.FileName)
	}
	if len(captured.Contracts) != n {
		t.Fatalf("exported %d contracts, want %d", len(captured.Contracts), n)
	}
	if captured.TenantID != tenantA || captured.Filter.TenantID != tenantA {
		t.Fatal("export must be scoped to the caller's tenant")
	}
	if captured.Analytics.TotalContracts != n || !captured.GeneratedAt.Equal(march) {
		t.Fatalf("analytics %+v", captured.Analytics)
	}
}

func TestExportContractsErrors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		svc := service.NewAnalyticsService(newMemStore(), nil, newClock(march), contractsConfig(), nopLog)
		if _, err := svc.Export(context.Background(), manager(tenantA), model.ContractFilter{}); !errors.Is(err, service.ErrDependencyFailure) {
			t.Fatalf("expected ErrDependencyFailure, got %v", err)
		}
	})

	t.Run("invalid filter", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := service.NewAnalyticsService(newMemStore(), mock_service.NewMockExcelGenerator(ctrl), newClock(march), contractsConfig(), nopLog)
		_, err := svc.Export(context.Background(), manager(tenantA), model.ContractFilter{Status: "ARCHIVED"})
		if !errors.Is(err, service.ErrValidation) {
			t.Fatalf("expected ErrValidation, got %v", err)
		}
	})

	t.Run("render failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		excel := mock_service.NewMockExcelGenerator(ctrl)
		excel.EXPECT().Generate(gomock.Any()).Return(nil, errors.New("disk full"))
		store := newMemStore()
		seedContract(t, store, tenantA, model.ContractStatusActive)
		svc := service.NewAnalyticsService(store, excel, newClock(march), contractsConfig(), nopLog)
		if _, err := svc.Export(context.Background(), manager(tenantA), model.ContractFilter{}); !errors.Is(err, service.ErrDependencyFailure) {
			t.Fatalf("expected ErrDependencyFailure, got %v", err)
		}
	})
}
