package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	payoutdomain "github.com/bazaarlabs/settlement/internal/payout/domain"
	"github.com/gin-gonic/gin"
)

type createPayoutRequest struct {
	SellerID      string `json:"seller_id"`
	StoreID       string `json:"store_id"`
	PaymentMethod string `json:"payment_method"`
	PeriodStart   string `json:"period_start"`
	PeriodEnd     string `json:"period_end"`
	Currency      string `json:"currency"`
	Notes         string `json:"notes"`
}

func (s *Server) CreatePayout(c *gin.Context) {
	var req createPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sellerID, err := parseSnowflakeID(req.SellerID)
	if err != nil {
		AbortWithError(c, newValidationError("seller_id", "invalid_seller_id", "invalid seller_id"))
		return
	}
	storeID, err := parseSnowflakeID(req.StoreID)
	if err != nil {
		AbortWithError(c, newValidationError("store_id", "invalid_store_id", "invalid store_id"))
		return
	}
	periodStart, err := parseOptionalTime(req.PeriodStart, false)
	if err != nil {
		AbortWithError(c, newValidationError("period_start", "invalid_period_start", "invalid period_start"))
		return
	}
	periodEnd, err := parseOptionalTime(req.PeriodEnd, true)
	if err != nil {
		AbortWithError(c, newValidationError("period_end", "invalid_period_end", "invalid period_end"))
		return
	}

	resp, err := s.payoutSvc.Create(c.Request.Context(), payoutdomain.CreatePayoutRequest{
		SellerID:      sellerID,
		StoreID:       storeID,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		PaymentMethod: strings.TrimSpace(req.PaymentMethod),
		Currency:      strings.TrimSpace(req.Currency),
		Notes:         strings.TrimSpace(req.Notes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "payout.create", "payout", resp.ID.String(), map[string]any{
		"seller_id": resp.SellerID.String(),
		"store_id":  resp.StoreID.String(),
		"amount":    resp.Amount.String(),
		"count":     resp.CommissionCount,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) payoutFilterFromQuery(c *gin.Context) (payoutdomain.ListFilter, bool) {
	var filter payoutdomain.ListFilter

	sellerID, err := parseOptionalSnowflakeID(c.Query("seller_id"))
	if err != nil {
		AbortWithError(c, newValidationError("seller_id", "invalid_seller_id", "invalid seller_id"))
		return filter, false
	}
	from, err := parseOptionalTime(c.Query("from"), false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return filter, false
	}
	to, err := parseOptionalTime(c.Query("to"), true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return filter, false
	}

	filter.SellerID = sellerID
	filter.From = from
	filter.To = to

	if status := strings.ToUpper(strings.TrimSpace(c.Query("status"))); status != "" {
		parsed := payoutdomain.Status(status)
		filter.Status = &parsed
	}
	return filter, true
}

func (s *Server) ListPayouts(c *gin.Context) {
	filter, ok := s.payoutFilterFromQuery(c)
	if !ok {
		return
	}

	resp, err := s.payoutSvc.List(c.Request.Context(), payoutdomain.ListRequest{
		Filter: filter,
		Page:   pageFromQuery(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetPayout(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	resp, err := s.payoutSvc.Details(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type processPayoutRequest struct {
	Reference string `json:"reference"`
	Proof     string `json:"proof"`
}

func (s *Server) ProcessPayout(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	// The body is optional; processing without transfer evidence is valid.
	var req processPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.payoutSvc.Process(c.Request.Context(), id, payoutdomain.ProcessPayoutRequest{
		Reference: strings.TrimSpace(req.Reference),
		Proof:     strings.TrimSpace(req.Proof),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "payout.process", "payout", id.String(), nil)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type completePayoutRequest struct {
	Reference string `json:"reference"`
	Proof     string `json:"proof"`
}

func (s *Server) CompletePayout(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req completePayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.payoutSvc.Complete(c.Request.Context(), id, payoutdomain.CompletePayoutRequest{
		Reference: strings.TrimSpace(req.Reference),
		Proof:     strings.TrimSpace(req.Proof),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "payout.complete", "payout", id.String(), map[string]any{
		"payout_reference": req.Reference,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type failPayoutRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) FailPayout(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req failPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.payoutSvc.Fail(c.Request.Context(), id, strings.TrimSpace(req.Reason))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "payout.fail", "payout", id.String(), map[string]any{
		"reason": req.Reason,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelPayout(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	resp, err := s.payoutSvc.Cancel(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "payout.cancel", "payout", id.String(), nil)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) PayoutStatistics(c *gin.Context) {
	filter, ok := s.payoutFilterFromQuery(c)
	if !ok {
		return
	}

	resp, err := s.payoutSvc.Statistics(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSellerPayouts(c *gin.Context) {
	sellerID, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_seller_id", "invalid seller id"))
		return
	}

	filter, ok := s.payoutFilterFromQuery(c)
	if !ok {
		return
	}
	filter.SellerID = &sellerID

	resp, err := s.payoutSvc.List(c.Request.Context(), payoutdomain.ListRequest{
		Filter: filter,
		Page:   pageFromQuery(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) PayoutEligibility(c *gin.Context) {
	sellerID, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_seller_id", "invalid seller id"))
		return
	}
	storeID, err := parseOptionalSnowflakeID(c.Query("store_id"))
	if err != nil {
		AbortWithError(c, newValidationError("store_id", "invalid_store_id", "invalid store_id"))
		return
	}
	from, err := parseOptionalTime(c.Query("from"), false)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}
	to, err := parseOptionalTime(c.Query("to"), true)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	resp, err := s.payoutSvc.Eligibility(c.Request.Context(), payoutdomain.ClaimQuery{
		SellerID:    sellerID,
		StoreID:     storeID,
		PeriodStart: from,
		PeriodEnd:   to,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
