package server

import (
	"net/http"
	"strconv"
	"strings"

	commissiondomain "github.com/bazaarlabs/settlement/internal/commission/domain"
	"github.com/bazaarlabs/settlement/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type recordCommissionsRequest struct {
	TransactionID string `json:"transaction_id"`
}

func (s *Server) RecordCommissions(c *gin.Context) {
	var req recordCommissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	transactionID, err := parseSnowflakeID(req.TransactionID)
	if err != nil {
		AbortWithError(c, newValidationError("transaction_id", "invalid_transaction_id", "invalid transaction_id"))
		return
	}

	if err := s.commissionSvc.RecordForTransaction(c.Request.Context(), transactionID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"recorded": true}})
}

func (s *Server) commissionFilterFromQuery(c *gin.Context) (commissiondomain.ListFilter, bool) {
	var filter commissiondomain.ListFilter

	sellerID, err := parseOptionalSnowflakeID(c.Query("seller_id"))
	if err != nil {
		AbortWithError(c, newValidationError("seller_id", "invalid_seller_id", "invalid seller_id"))
		return filter, false
	}
	storeID, err := parseOptionalSnowflakeID(c.Query("store_id"))
	if err != nil {
		AbortWithError(c, newValidationError("store_id", "invalid_store_id", "invalid store_id"))
		return filter, false
	}
	orderID, err := parseOptionalSnowflakeID(c.Query("order_id"))
	if err != nil {
		AbortWithError(c, newValidationError("order_id", "invalid_order_id", "invalid order_id"))
		return filter, false
	}
	paidOut, err := parseOptionalBool(c.Query("paid_out"))
	if err != nil {
		AbortWithError(c, newValidationError("paid_out", "invalid_paid_out", "invalid paid_out"))
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
	filter.StoreID = storeID
	filter.OrderID = orderID
	filter.PaidOut = paidOut
	filter.From = from
	filter.To = to

	if status := strings.ToUpper(strings.TrimSpace(c.Query("status"))); status != "" {
		parsed := commissiondomain.Status(status)
		filter.Status = &parsed
	}
	return filter, true
}

func pageFromQuery(c *gin.Context) pagination.Pagination {
	var page pagination.Pagination
	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		page.Page = v
	}
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		page.Limit = v
	}
	return page
}

func (s *Server) ListCommissions(c *gin.Context) {
	filter, ok := s.commissionFilterFromQuery(c)
	if !ok {
		return
	}

	resp, err := s.commissionSvc.List(c.Request.Context(), commissiondomain.ListRequest{
		Filter: filter,
		Page:   pageFromQuery(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetCommission(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	resp, err := s.commissionSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSellerCommissions(c *gin.Context) {
	sellerID, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_seller_id", "invalid seller id"))
		return
	}

	filter, ok := s.commissionFilterFromQuery(c)
	if !ok {
		return
	}
	filter.SellerID = &sellerID

	resp, err := s.commissionSvc.List(c.Request.Context(), commissiondomain.ListRequest{
		Filter: filter,
		Page:   pageFromQuery(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) SellerCommissionSummary(c *gin.Context) {
	sellerID, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_seller_id", "invalid seller id"))
		return
	}

	resp, err := s.commissionSvc.SellerSummary(c.Request.Context(), sellerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CommissionStatistics(c *gin.Context) {
	filter, ok := s.commissionFilterFromQuery(c)
	if !ok {
		return
	}

	resp, err := s.commissionSvc.Statistics(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) TopSellers(c *gin.Context) {
	filter, ok := s.commissionFilterFromQuery(c)
	if !ok {
		return
	}

	limit := 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = v
	}

	resp, err := s.commissionSvc.TopSellers(c.Request.Context(), filter, limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecentCommissions(c *gin.Context) {
	limit := 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = v
	}

	resp, err := s.commissionSvc.Recent(c.Request.Context(), limit)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelOrderCommissions(c *gin.Context) {
	orderID, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_order_id", "invalid order id"))
		return
	}

	cancelled, err := s.commissionSvc.CancelForOrder(c.Request.Context(), orderID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "commission.cancel_for_order", "order", orderID.String(), map[string]any{
		"cancelled": cancelled,
	})

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"cancelled": cancelled}})
}
