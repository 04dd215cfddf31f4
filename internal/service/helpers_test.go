package service_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nurpe/snowops-contracts/internal/config"
	"github.com/nurpe/snowops-contracts/internal/model"
	"github.com/nurpe/snowops-contracts/internal/service"
)

var (
	tenantA = uuid.MustParse("8f1b6b2e-4a51-4f0e-9d7c-0c7f2b1d9a01")
	tenantB = uuid.MustParse("1d2e3f40-5a6b-4c7d-8e9f-a0b1c2d3e4f5")
	march   = time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)
	nopLog  = zerolog.Nop()
)

func manager(tenant uuid.UUID) model.Principal {
	return model.Principal{UserID: uuid.New(), TenantID: tenant, Role: model.UserRoleManager}
}

func viewer(tenant uuid.UUID) model.Principal {
	return model.Principal{UserID: uuid.New(), TenantID: tenant, Role: model.UserRoleViewer}
}

func contractsConfig() config.ContractsConfig {
	return config.ContractsConfig{
		NumberMaxAttempts:   10,
		ExpiringHorizonDays: 30,
		RenewalInterval:     time.Hour,
		RenewalWorkers:      1,
		RenewalBatchSize:    100,
	}
}

func createInput(p model.Principal) service.CreateContractInput {
	end := march.AddDate(1, 0, 0)
	return service.CreateContractInput{
		Principal:    p,
		Title:        "Suporte mensal",
		Description:  "Contrato de suporte ao ERP",
		ContractType: model.ContractTypeServiceAgreement,
		ContractorID: uuid.New(),
		ContracteeID: uuid.New(),
		StartDate:    march,
		EndDate:      &end,
		TotalValue:   decimal.NewFromInt(1200),
		PaymentTerms: model.PaymentTerms{
			BillingCycle:  model.BillingCycleMonthly,
			PaymentMethod: model.PaymentMethodPix,
			DueDays:       10,
		},
	}
}

// seedContract stores a ready made contract of tenant in status.
func seedContract(t *testing.T, store *memStore, tenant uuid.UUID, status model.ContractStatus, opts ...func(*model.Contract)) model.Contract {
	t.Helper()
	end := march.AddDate(1, 0, 0)
	c := model.Contract{
		ID:             uuid.New(),
		TenantID:       tenant,
		ContractNumber: "2024020001",
		Version:        1,
		Title:          "Licença anual",
		ContractType:   model.ContractTypeSoftwareLicense,
		ContractorID:   uuid.New(),
		ContracteeID:   uuid.New(),
		StartDate:      march.AddDate(0, -1, 0),
		EndDate:        &end,
		TotalValue:     decimal.NewFromInt(600),
		Currency:       "BRL",
		PaymentTerms: model.PaymentTerms{
			BillingCycle:  model.BillingCycleAnnual,
			PaymentMethod: model.PaymentMethodBoleto,
			DueDays:       15,
		},
		Status:    status,
		Metadata:  map[string]any{},
		CreatedBy: uuid.New(),
		CreatedAt: march.AddDate(0, -1, 0),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return store.put(c)
}

func withNumber(number string) func(*model.Contract) {
	return func(c *model.Contract) { c.ContractNumber = number }
}

func withAutoRenewal(period model.RenewalPeriod) func(*model.Contract) {
	return func(c *model.Contract) {
		c.AutoRenewal = true
		c.RenewalPeriod = &period
	}
}

func ptr[T any](v T) *T { return &v }
