package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/nurpe/snowops-contracts/internal/auth"
	httphandler "github.com/nurpe/snowops-contracts/internal/http"
	"github.com/nurpe/snowops-contracts/internal/http/middleware"
	mock_http "github.com/nurpe/snowops-contracts/internal/http/mocks"
	"github.com/nurpe/snowops-contracts/internal/model"
	"github.com/nurpe/snowops-contracts/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router     *gin.Engine
	contracts  *mock_http.MockContractUseCase
	signatures *mock_http.MockSignatureUseCase
	renewals   *mock_http.MockRenewalUseCase
	analytics  *mock_http.MockAnalyticsUseCase
	principal  model.Principal
	token      string
}

func newFixture(t *testing.T, role model.UserRole) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		contracts:  mock_http.NewMockContractUseCase(ctrl),
		signatures: mock_http.NewMockSignatureUseCase(ctrl),
		renewals:   mock_http.NewMockRenewalUseCase(ctrl),
		analytics:  mock_http.NewMockAnalyticsUseCase(ctrl),
		principal:  model.Principal{UserID: uuid.New(), TenantID: uuid.New(), Role: role},
	}

	parser := auth.NewParser("test-secret")
	token, err := parser.Issue(f.principal, time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	f.token = token

	handler := httphandler.NewHandler(f.contracts, f.signatures, f.renewals, f.analytics, zerolog.Nop())
	f.router = httphandler.NewRouter(handler, middleware.Auth(parser), "test", nil, zerolog.Nop())
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+f.token)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestCreateContract(t *testing.T) {
	contractorID := uuid.New()
	contracteeID := uuid.New()
	body := fmt.Sprintf(`{
		"title": "Suporte mensal",
		"contract_type": "SERVICE_AGREEMENT",
		"contractor_id": %q,
		"contractee_id": %q,
		"start_date": "2024-03-01",
		"end_date": "2025-03-01T00:00:00Z",
		"total_value": "1200.50",
		"payment_terms": {"billing_cycle": "MONTHLY", "payment_method": "PIX", "due_days": 10},
		"tags": ["erp"]
	}`, contractorID, contracteeID)

	t.Run("success", func(t *testing.T) {
		f := newFixture(t, model.UserRoleManager)
		f.contracts.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, in service.CreateContractInput) (*model.Contract, error) {
				if in.Principal != f.principal {
					t.Errorf("principal = %+v", in.Principal)
				}
				if in.ContractorID != contractorID || in.ContracteeID != contracteeID {
					t.Errorf("parties = %s / %s", in.ContractorID, in.ContracteeID)
				}
				if !in.StartDate.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) || in.EndDate == nil {
					t.Errorf("dates = %v / %v", in.StartDate, in.EndDate)
				}
				if !in.TotalValue.Equal(decimal.RequireFromString("1200.50")) {
					t.Errorf("total_value = %s", in.TotalValue)
				}
				if in.PaymentTerms.PaymentMethod != model.PaymentMethodPix {
					t.Errorf("payment terms = %+v", in.PaymentTerms)
				}
				return &model.Contract{ID: uuid.New(), ContractNumber: "2024030001", Status: model.ContractStatusDraft}, nil
			})

		w := f.do(http.MethodPost, "/contracts", body)
		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
		var got model.Contract
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got.ContractNumber != "2024030001" || got.Status != model.ContractStatusDraft {
			t.Fatalf("body = %+v", got)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		f := newFixture(t, model.UserRoleManager)
		if w := f.do(http.MethodPost, "/contracts", "{"); w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("missing title", func(t *testing.T) {
		f := newFixture(t, model.UserRoleManager)
		w := f.do(http.MethodPost, "/contracts", fmt.Sprintf(`{"contract_type":"NDA","contractor_id":%q,"contractee_id":%q,"start_date":"2024-03-01"}`, contractorID, contracteeID))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("invalid party id", func(t *testing.T) {
		f := newFixture(t, model.UserRoleManager)
		w := f.do(http.MethodPost, "/contracts", `{"title":"x","contract_type":"NDA","contractor_id":"abc","contractee_id":"def","start_date":"2024-03-01"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("invalid date", func(t *testing.T) {
		f := newFixture(t, model.UserRoleManager)
		w := f.do(http.MethodPost, "/contracts", fmt.Sprintf(`{"title":"x","contract_type":"NDA","contractor_id":%q,"contractee_id":%q,"start_date":"01/03/2024"}`, contractorID, contracteeID))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", fmt.Errorf("%w: title is required", service.ErrValidation), http.StatusBadRequest},
		{"not found", fmt.Errorf("%w: get contract", service.ErrNotFound), http.StatusNotFound},
		{"invalid state", fmt.Errorf("%w: DRAFT -> ACTIVE", service.ErrInvalidState), http.StatusConflict},
		{"conflict", fmt.Errorf("%w: number taken", service.ErrConflict), http.StatusConflict},
		{"immutable", fmt.Errorf("%w: status ACTIVE", service.ErrContractImmutable), http.StatusUnprocessableEntity},
		{"permission", service.ErrPermissionDenied, http.StatusForbidden},
		{"dependency", fmt.Errorf("%w: db: %w", service.ErrDependencyFailure, errors.New("refused")), http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, model.UserRoleManager)
			id := uuid.New()
			f.contracts.EXPECT().Get(gomock.Any(), f.principal, id).Return(nil, tt.err)

			w := f.do(http.MethodGet, "/contracts/"+id.String(), "")
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestAuthenticationRequired(t *testing.T) {
	f := newFixture(t, model.UserRoleManager)
	req := httptest.NewRequest(http.MethodGet, "/contracts", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestInvalidContractID(t *testing.T) {
	f := newFixture(t, model.UserRoleManager)
	if w := f.do(http.MethodGet, "/contracts/not-a-uuid", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSearchContracts(t *testing.T) {
	f := newFixture(t, model.UserRoleViewer)
	f.contracts.EXPECT().
		Search(gomock.Any(), f.principal, gomock.Any()).
		DoAndReturn(func(_ any, _ model.Principal, filter model.ContractFilter) (*service.SearchResult, error) {
			if filter.Status != model.ContractStatusActive || filter.Limit != 10 || filter.Offset != 20 {
				t.Errorf("filter = %+v", filter)
			}
			if filter.SearchTerm != "erp" || filter.StartFrom == nil || filter.EndUntil != nil {
				t.Errorf("filter = %+v", filter)
			}
			return &service.SearchResult{Items: []model.Contract{}, Total: 0, Limit: 10, Offset: 20}, nil
		})

	w := f.do(http.MethodGet, "/contracts?status=active&q=erp&start_from=2024-01-01&limit=10&offset=20", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if w := f.do(http.MethodGet, "/contracts?limit=ten", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad limit, got %d", w.Code)
	}
	if w := f.do(http.MethodGet, "/contracts?end_until=yesterday", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad date, got %d", w.Code)
	}
}

func TestUpdateContract(t *testing.T) {
	f := newFixture(t, model.UserRoleManager)
	id := uuid.New()
	f.contracts.EXPECT().
		Update(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, in service.UpdateContractInput) (*model.Contract, error) {
			ch := in.Changes
			if in.ContractID != id || ch.Title == nil || *ch.Title != "Novo título" {
				t.Errorf("input = %+v", in)
			}
			if !ch.ClearEndDate || ch.EndDate != nil || ch.StartDate != nil {
				t.Errorf("dates = %+v", ch)
			}
			return &model.Contract{ID: id}, nil
		})

	w := f.do(http.MethodPatch, "/contracts/"+id.String(), `{"title":"Novo título","clear_end_date":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if w := f.do(http.MethodPatch, "/contracts/"+id.String(), `{"contractor_id":"nope"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestTransitionContract(t *testing.T) {
	f := newFixture(t, model.UserRoleManager)
	id := uuid.New()
	f.contracts.EXPECT().
		Transition(gomock.Any(), service.TransitionInput{Principal: f.principal, ContractID: id, Status: model.ContractStatusPendingReview}).
		Return(&model.Contract{ID: id, Status: model.ContractStatusPendingReview}, nil)

	w := f.do(http.MethodPost, "/contracts/"+id.String()+"/status", `{"status":"pending_review"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCreateVersionWithoutBody(t *testing.T) {
	f := newFixture(t, model.UserRoleManager)
	id := uuid.New()
	f.contracts.EXPECT().
		CreateVersion(gomock.Any(), gomock.Any()).
		Return(&model.Contract{ID: uuid.New(), Version: 2}, nil)

	if w := f.do(http.MethodPost, "/contracts/"+id.String()+"/versions", ""); w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestInitiateSignature(t *testing.T) {
	f := newFixture(t, model.UserRoleManager)
	id := uuid.New()
	f.signatures.EXPECT().
		InitiateSignature(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, in service.InitiateSignatureInput) (*service.InitiateSignatureResult, error) {
			if in.ContractID != id || in.Provider != "sandbox" || len(in.Signers) != 1 || in.Signers[0].Role != model.SignerRoleContractor {
				t.Errorf("input = %+v", in)
			}
			return &service.InitiateSignatureResult{Provider: "sandbox", SignatureURL: "https://sandbox.sign.local/sign/x", ProcessID: "x"}, nil
		})

	w := f.do(http.MethodPost, "/contracts/"+id.String()+"/signatures",
		`{"provider":"sandbox","signers":[{"name":"Ana","email":"ana@empresa.com.br","role":"CONTRACTOR"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got service.InitiateSignatureResult
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil || got.ProcessID != "x" {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestSignatureWebhook(t *testing.T) {
	payload := `{"contract_id":"c","signer_email":"ana@empresa.com.br","status":"SIGNED"}`
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"reconciled", nil, http.StatusOK},
		{"unauthentic", fmt.Errorf("%w: bad signature", service.ErrUnauthorizedWebhook), http.StatusUnauthorized},
		{"unknown contract is acknowledged", fmt.Errorf("%w: contract", service.ErrNotFound), http.StatusOK},
		{"store failure is acknowledged", fmt.Errorf("%w: db", service.ErrDependencyFailure), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, model.UserRoleManager)
			f.signatures.EXPECT().
				ReconcileWebhook(gomock.Any(), "sandbox", []byte(payload), gomock.Any()).
				DoAndReturn(func(_ any, _ string, _ []byte, headers http.Header) (*service.WebhookOutcome, error) {
					if headers.Get("X-Sandbox-Signature") != "abc" {
						t.Errorf("headers not forwarded: %v", headers)
					}
					if tt.err != nil {
						return nil, tt.err
					}
					return &service.WebhookOutcome{Provider: "sandbox", Activated: true}, nil
				})

			req := httptest.NewRequest(http.MethodPost, "/webhooks/signature/sandbox", bytes.NewBufferString(payload))
			req.Header.Set("X-Sandbox-Signature", "abc")
			w := httptest.NewRecorder()
			f.router.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestScheduleRenewal(t *testing.T) {
	f := newFixture(t, model.UserRoleManager)
	id := uuid.New()
	f.renewals.EXPECT().
		ScheduleRenewal(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, in service.ScheduleRenewalInput) (*model.ContractRenewal, error) {
			if in.ContractID != id || in.RenewalType != model.RenewalTypeManual || !in.ScheduledDate.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
				t.Errorf("input = %+v", in)
			}
			return &model.ContractRenewal{ID: uuid.New(), Status: model.RenewalStatusScheduled}, nil
		})

	w := f.do(http.MethodPost, "/contracts/"+id.String()+"/renewals", `{"renewal_date":"2025-01-01","renewal_type":"manual"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if w := f.do(http.MethodPost, "/contracts/"+id.String()+"/renewals", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestProcessRenewals(t *testing.T) {
	t.Run("manager denied", func(t *testing.T) {
		f := newFixture(t, model.UserRoleManager)
		if w := f.do(http.MethodPost, "/renewals/process", ""); w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})

	t.Run("admin runs a pass", func(t *testing.T) {
		f := newFixture(t, model.UserRoleAdmin)
		f.renewals.EXPECT().ProcessPendingRenewals(gomock.Any()).Return(&model.RenewalRunSummary{Processed: 2, Completed: 2}, nil)

		w := f.do(http.MethodPost, "/renewals/process", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var got model.RenewalRunSummary
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil || got.Completed != 2 {
			t.Fatalf("body = %s", w.Body.String())
		}
	})
}

func TestContractAnalytics(t *testing.T) {
	f := newFixture(t, model.UserRoleViewer)
	f.analytics.EXPECT().
		Generate(gomock.Any(), f.principal, gomock.Any()).
		DoAndReturn(func(_ any, _ model.Principal, horizon *int) (*model.ContractAnalytics, error) {
			if horizon == nil || *horizon != 7 {
				t.Errorf("horizon = %v", horizon)
			}
			return &model.ContractAnalytics{TotalContracts: 3, HorizonDays: 7}, nil
		})

	if w := f.do(http.MethodGet, "/analytics?horizon_days=7", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w := f.do(http.MethodGet, "/analytics?horizon_days=week", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestExportContracts(t *testing.T) {
	f := newFixture(t, model.UserRoleViewer)
	f.analytics.EXPECT().
		Export(gomock.Any(), f.principal, gomock.Any()).
		DoAndReturn(func(_ any, _ model.Principal, filter model.ContractFilter) (*service.ExportResult, error) {
			if filter.ContractType != model.ContractTypeNDA {
				t.Errorf("filter = %+v", filter)
			}
			return &service.ExportResult{FileName: "contratos_20240315_103000.xlsx", Content: []byte("xlsx")}, nil
		})

	w := f.do(http.MethodPost, "/contracts/export", `{"contract_type":"nda"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="contratos_20240315_103000.xlsx"` {
		t.Fatalf("content disposition = %q", cd)
	}
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, model.UserRoleViewer)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
