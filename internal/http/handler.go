package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/nurpe/snowops-contracts/internal/http/middleware"
	"github.com/nurpe/snowops-contracts/internal/model"
	"github.com/nurpe/snowops-contracts/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	contracts  ContractUseCase
	signatures SignatureUseCase
	renewals   RenewalUseCase
	analytics  AnalyticsUseCase
	log        zerolog.Logger
}

func NewHandler(
	contracts ContractUseCase,
	signatures SignatureUseCase,
	renewals RenewalUseCase,
	analytics AnalyticsUseCase,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		contracts:  contracts,
		signatures: signatures,
		renewals:   renewals,
		analytics:  analytics,
		log:        log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.POST("/webhooks/signature/:provider", h.signatureWebhook)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.POST("/contracts", h.createContract)
	protected.GET("/contracts", h.searchContracts)
	protected.POST("/contracts/export", h.exportContracts)
	protected.GET("/contracts/:id", h.getContract)
	protected.PATCH("/contracts/:id", h.updateContract)
	protected.POST("/contracts/:id/status", h.transitionContract)
	protected.POST("/contracts/:id/versions", h.createVersion)
	protected.GET("/contracts/:id/history", h.contractHistory)
	protected.POST("/contracts/:id/signatures", h.initiateSignature)
	protected.GET("/contracts/:id/signatures/progress", h.signingProgress)
	protected.POST("/contracts/:id/renewals", h.scheduleRenewal)
	protected.POST("/renewals/process", h.processRenewals)
	protected.GET("/analytics", h.contractAnalytics)
}

type contractRequest struct {
	Title             string               `json:"title" binding:"required"`
	Description       string               `json:"description"`
	ContractType      model.ContractType   `json:"contract_type" binding:"required"`
	ContractorID      string               `json:"contractor_id" binding:"required"`
	ContracteeID      string               `json:"contractee_id" binding:"required"`
	StartDate         string               `json:"start_date" binding:"required"`
	EndDate           string               `json:"end_date"`
	TotalValue        decimal.Decimal      `json:"total_value"`
	Currency          string               `json:"currency"`
	PaymentTerms      model.PaymentTerms   `json:"payment_terms"`
	AutoRenewal       bool                 `json:"auto_renewal"`
	RenewalPeriod     *model.RenewalPeriod `json:"renewal_period"`
	RenewalNoticeDays *int                 `json:"renewal_notice_days"`
	Metadata          map[string]any       `json:"metadata"`
	Tags              []string             `json:"tags"`
}

func (h *Handler) createContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req contractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contractorID, err := uuid.Parse(strings.TrimSpace(req.ContractorID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contractor_id"})
		return
	}
	contracteeID, err := uuid.Parse(strings.TrimSpace(req.ContracteeID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contractee_id"})
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}

	contract, err := h.contracts.Create(c.Request.Context(), service.CreateContractInput{
		Principal:         principal,
		Title:             req.Title,
		Description:       req.Description,
		ContractType:      req.ContractType,
		ContractorID:      contractorID,
		ContracteeID:      contracteeID,
		StartDate:         start,
		EndDate:           end,
		TotalValue:        req.TotalValue,
		Currency:          req.Currency,
		PaymentTerms:      req.PaymentTerms,
		AutoRenewal:       req.AutoRenewal,
		RenewalPeriod:     req.RenewalPeriod,
		RenewalNoticeDays: req.RenewalNoticeDays,
		Metadata:          req.Metadata,
		Tags:              req.Tags,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contract)
}

type searchQuery struct {
	Status       string `form:"status"`
	ContractType string `form:"contract_type"`
	StartFrom    string `form:"start_from"`
	EndUntil     string `form:"end_until"`
	Search       string `form:"q"`
	Limit        int    `form:"limit"`
	Offset       int    `form:"offset"`
}

func (q searchQuery) filter() (model.ContractFilter, error) {
	filter := model.ContractFilter{
		Status:       model.ContractStatus(strings.ToUpper(strings.TrimSpace(q.Status))),
		ContractType: model.ContractType(strings.ToUpper(strings.TrimSpace(q.ContractType))),
		SearchTerm:   q.Search,
		Limit:        q.Limit,
		Offset:       q.Offset,
	}
	var err error
	if filter.StartFrom, err = parseOptionalDate(q.StartFrom); err != nil {
		return filter, errors.New("invalid start_from")
	}
	if filter.EndUntil, err = parseOptionalDate(q.EndUntil); err != nil {
		return filter, errors.New("invalid end_until")
	}
	return filter, nil
}

func (h *Handler) searchContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var query searchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	filter, err := query.filter()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.contracts.Search(c.Request.Context(), principal, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type exportRequest struct {
	Status       string `json:"status"`
	ContractType string `json:"contract_type"`
	StartFrom    string `json:"start_from"`
	EndUntil     string `json:"end_until"`
	Search       string `json:"q"`
}

func (h *Handler) exportContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req exportRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	filter, err := searchQuery{
		Status:       req.Status,
		ContractType: req.ContractType,
		StartFrom:    req.StartFrom,
		EndUntil:     req.EndUntil,
		Search:       req.Search,
	}.filter()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.analytics.Export(c.Request.Context(), principal, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, xlsxContentType, result.Content)
}

func (h *Handler) getContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := contractID(c)
	if !ok {
		return
	}

	details, err := h.contracts.Get(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

type contractChangesRequest struct {
	Title             *string              `json:"title"`
	Description       *string              `json:"description"`
	ContractType      *model.ContractType  `json:"contract_type"`
	ContractorID      *string              `json:"contractor_id"`
	ContracteeID      *string              `json:"contractee_id"`
	StartDate         *string              `json:"start_date"`
	EndDate           *string              `json:"end_date"`
	ClearEndDate      bool                 `json:"clear_end_date"`
	TotalValue        *decimal.Decimal     `json:"total_value"`
	Currency          *string              `json:"currency"`
	PaymentTerms      *model.PaymentTerms  `json:"payment_terms"`
	AutoRenewal       *bool                `json:"auto_renewal"`
	RenewalPeriod     *model.RenewalPeriod `json:"renewal_period"`
	RenewalNoticeDays *int                 `json:"renewal_notice_days"`
	Metadata          map[string]any       `json:"metadata"`
	Tags              []string             `json:"tags"`
}

func (r contractChangesRequest) changes() (service.ContractChanges, error) {
	changes := service.ContractChanges{
		Title:             r.Title,
		Description:       r.Description,
		ContractType:      r.ContractType,
		ClearEndDate:      r.ClearEndDate,
		TotalValue:        r.TotalValue,
		Currency:          r.Currency,
		PaymentTerms:      r.PaymentTerms,
		AutoRenewal:       r.AutoRenewal,
		RenewalPeriod:     r.RenewalPeriod,
		RenewalNoticeDays: r.RenewalNoticeDays,
		Metadata:          r.Metadata,
		Tags:              r.Tags,
	}
	if r.ContractorID != nil {
		id, err := uuid.Parse(strings.TrimSpace(*r.ContractorID))
		if err != nil {
			return changes, errors.New("invalid contractor_id")
		}
		changes.ContractorID = &id
	}
	if r.ContracteeID != nil {
		id, err := uuid.Parse(strings.TrimSpace(*r.ContracteeID))
		if err != nil {
			return changes, errors.New("invalid contractee_id")
		}
		changes.ContracteeID = &id
	}
	if r.StartDate != nil {
		start, err := parseDate(*r.StartDate)
		if err != nil {
			return changes, errors.New("invalid start_date")
		}
		changes.StartDate = &start
	}
	if r.EndDate != nil {
		end, err := parseDate(*r.EndDate)
		if err != nil {
			return changes, errors.New("invalid end_date")
		}
		changes.EndDate = &end
	}
	return changes, nil
}

func (h *Handler) updateContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := contractID(c)
	if !ok {
		return
	}

	var req contractChangesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	changes, err := req.changes()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.contracts.Update(c.Request.Context(), service.UpdateContractInput{
		Principal:  principal,
		ContractID: id,
		Changes:    changes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) transitionContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := contractID(c)
	if !ok {
		return
	}

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.contracts.Transition(c.Request.Context(), service.TransitionInput{
		Principal:  principal,
		ContractID: id,
		Status:     model.ContractStatus(strings.ToUpper(strings.TrimSpace(req.Status))),
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) createVersion(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := contractID(c)
	if !ok {
		return
	}

	var req contractChangesRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	changes, err := req.changes()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contract, err := h.contracts.CreateVersion(c.Request.Context(), service.CreateVersionInput{
		Principal:  principal,
		ContractID: id,
		Changes:    changes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contract)
}

func (h *Handler) contractHistory(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := contractID(c)
	if !ok {
		return
	}

	versions, err := h.contracts.History(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"versions": versions})
}

type initiateSignatureRequest struct {
	Provider string         `json:"provider"`
	Signers  []model.Signer `json:"signers" binding:"required"`
}

func (h *Handler) initiateSignature(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := contractID(c)
	if !ok {
		return
	}

	var req initiateSignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.signatures.InitiateSignature(c.Request.Context(), service.InitiateSignatureInput{
		Principal:  principal,
		ContractID: id,
		Provider:   req.Provider,
		Signers:    req.Signers,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) signingProgress(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := contractID(c)
	if !ok {
		return
	}

	progress, err := h.signatures.SigningProgress(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// signatureWebhook answers 401 to unauthentic deliveries and acknowledges
// everything else, logging reconciliation failures.
func (h *Handler) signatureWebhook(c *gin.Context) {
	provider := c.Param("provider")
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	outcome, err := h.signatures.ReconcileWebhook(c.Request.Context(), provider, payload, c.Request.Header)
	if errors.Is(err, service.ErrUnauthorizedWebhook) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook signature"})
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("provider", provider).Msg("webhook reconciliation failed")
		c.JSON(http.StatusOK, gin.H{"acknowledged": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"acknowledged": true, "outcome": outcome})
}

type scheduleRenewalRequest struct {
	RenewalDate   string `json:"renewal_date" binding:"required"`
	RenewalType   string `json:"renewal_type"`
	TermsChanged  bool   `json:"terms_changed"`
	ChangeSummary string `json:"change_summary"`
}

func (h *Handler) scheduleRenewal(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := contractID(c)
	if !ok {
		return
	}

	var req scheduleRenewalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := parseDate(req.RenewalDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid renewal_date"})
		return
	}

	renewal, err := h.renewals.ScheduleRenewal(c.Request.Context(), service.ScheduleRenewalInput{
		Principal:     principal,
		ContractID:    id,
		ScheduledDate: date,
		RenewalType:   model.RenewalType(strings.ToUpper(strings.TrimSpace(req.RenewalType))),
		TermsChanged:  req.TermsChanged,
		ChangeSummary: req.ChangeSummary,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, renewal)
}

// processRenewals runs a renewal pass across all tenants, so it is admin only.
func (h *Handler) processRenewals(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	if !principal.IsAdmin() {
		h.handleError(c, service.ErrPermissionDenied)
		return
	}

	summary, err := h.renewals.ProcessPendingRenewals(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) contractAnalytics(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var horizon *int
	if raw := strings.TrimSpace(c.Query("horizon_days")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid horizon_days"})
			return
		}
		horizon = &days
	}

	result, err := h.analytics.Generate(c.Request.Context(), principal, horizon)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidState), errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrContractImmutable):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorizedWebhook):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDependencyFailure):
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("dependency failure")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "a required service is unavailable, try again later"})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func contractID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return uuid.Nil, false
	}
	return id, true
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrValidation
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrValidation
}

func parseOptionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parsed, err := parseDate(raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
