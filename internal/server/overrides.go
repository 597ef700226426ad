package server

import (
	"net/http"
	"strings"
	"time"

	overridedomain "github.com/bazaarlabs/settlement/internal/override/domain"
	ruledomain "github.com/bazaarlabs/settlement/internal/rule/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createOverrideRequest struct {
	SellerID       string           `json:"seller_id"`
	CategoryID     string           `json:"category_id"`
	CommissionType string           `json:"commission_type"`
	CommissionRate decimal.Decimal  `json:"commission_rate"`
	MinOrderValue  *decimal.Decimal `json:"min_order_value"`
	MaxOrderValue  *decimal.Decimal `json:"max_order_value"`
	Priority       *int             `json:"priority"`
	ValidFrom      *time.Time       `json:"valid_from"`
	ValidUntil     *time.Time       `json:"valid_until"`
	ApprovedBy     string           `json:"approved_by"`
	Notes          string           `json:"notes"`
}

func (s *Server) CreateCommissionOverride(c *gin.Context) {
	var req createOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	sellerID, err := parseOptionalSnowflakeID(req.SellerID)
	if err != nil {
		AbortWithError(c, newValidationError("seller_id", "invalid_seller_id", "invalid seller_id"))
		return
	}
	categoryID, err := parseOptionalSnowflakeID(req.CategoryID)
	if err != nil {
		AbortWithError(c, newValidationError("category_id", "invalid_category_id", "invalid category_id"))
		return
	}

	scope, err := overridedomain.NewScope(sellerID, categoryID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp, err := s.overrideSvc.Create(c.Request.Context(), overridedomain.CreateOverrideRequest{
		Scope:          scope,
		CommissionType: ruledomain.RuleType(strings.ToUpper(strings.TrimSpace(req.CommissionType))),
		CommissionRate: req.CommissionRate,
		MinOrderValue:  req.MinOrderValue,
		MaxOrderValue:  req.MaxOrderValue,
		Priority:       req.Priority,
		ValidFrom:      req.ValidFrom,
		ValidUntil:     req.ValidUntil,
		ApprovedBy:     strings.TrimSpace(req.ApprovedBy),
		Notes:          strings.TrimSpace(req.Notes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "commission_override.create", "commission_override", resp.ID.String(), map[string]any{
		"commission_type": string(resp.CommissionType),
		"commission_rate": resp.CommissionRate.String(),
		"approved_by":     resp.ApprovedBy,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCommissionOverrides(c *gin.Context) {
	isActive, err := parseOptionalBool(c.Query("is_active"))
	if err != nil {
		AbortWithError(c, newValidationError("is_active", "invalid_is_active", "invalid is_active"))
		return
	}
	sellerID, err := parseOptionalSnowflakeID(c.Query("seller_id"))
	if err != nil {
		AbortWithError(c, newValidationError("seller_id", "invalid_seller_id", "invalid seller_id"))
		return
	}
	categoryID, err := parseOptionalSnowflakeID(c.Query("category_id"))
	if err != nil {
		AbortWithError(c, newValidationError("category_id", "invalid_category_id", "invalid category_id"))
		return
	}

	resp, err := s.overrideSvc.List(c.Request.Context(), overridedomain.ListOverridesRequest{
		IsActive:   isActive,
		SellerID:   sellerID,
		CategoryID: categoryID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCommissionOverride(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	resp, err := s.overrideSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateOverrideRequest struct {
	CommissionType *string          `json:"commission_type"`
	CommissionRate *decimal.Decimal `json:"commission_rate"`
	IsActive       *bool            `json:"is_active"`
	ValidFrom      *time.Time       `json:"valid_from"`
	ValidUntil     *time.Time       `json:"valid_until"`
	Notes          *string          `json:"notes"`
}

func (s *Server) UpdateCommissionOverride(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req updateOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var commissionType *ruledomain.RuleType
	if req.CommissionType != nil {
		parsed := ruledomain.RuleType(strings.ToUpper(strings.TrimSpace(*req.CommissionType)))
		commissionType = &parsed
	}

	resp, err := s.overrideSvc.Update(c.Request.Context(), id, overridedomain.UpdateOverrideRequest{
		CommissionType: commissionType,
		CommissionRate: req.CommissionRate,
		IsActive:       req.IsActive,
		ValidFrom:      req.ValidFrom,
		ValidUntil:     req.ValidUntil,
		Notes:          req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "commission_override.update", "commission_override", resp.ID.String(), nil)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteCommissionOverride(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	if err := s.overrideSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "commission_override.delete", "commission_override", id.String(), nil)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}
