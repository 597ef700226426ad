package server

import (
	"net/http"
	"strings"
	"time"

	auditdomain "github.com/bazaarlabs/settlement/internal/audit/domain"
	ruledomain "github.com/bazaarlabs/settlement/internal/rule/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type createRuleRequest struct {
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Type          string           `json:"type"`
	Value         decimal.Decimal  `json:"value"`
	CategoryID    string           `json:"category_id"`
	SellerID      string           `json:"seller_id"`
	MinOrderValue *decimal.Decimal `json:"min_order_value"`
	MaxOrderValue *decimal.Decimal `json:"max_order_value"`
	Priority      int              `json:"priority"`
	ValidFrom     *time.Time       `json:"valid_from"`
	ValidUntil    *time.Time       `json:"valid_until"`
}

func (s *Server) CreateCommissionRule(c *gin.Context) {
	var req createRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	categoryID, err := parseOptionalSnowflakeID(req.CategoryID)
	if err != nil {
		AbortWithError(c, newValidationError("category_id", "invalid_category_id", "invalid category_id"))
		return
	}
	sellerID, err := parseOptionalSnowflakeID(req.SellerID)
	if err != nil {
		AbortWithError(c, newValidationError("seller_id", "invalid_seller_id", "invalid seller_id"))
		return
	}

	resp, err := s.ruleSvc.Create(c.Request.Context(), ruledomain.CreateRuleRequest{
		Name:          strings.TrimSpace(req.Name),
		Description:   strings.TrimSpace(req.Description),
		Type:          ruledomain.RuleType(strings.ToUpper(strings.TrimSpace(req.Type))),
		Value:         req.Value,
		CategoryID:    categoryID,
		SellerID:      sellerID,
		MinOrderValue: req.MinOrderValue,
		MaxOrderValue: req.MaxOrderValue,
		Priority:      req.Priority,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "commission_rule.create", "commission_rule", resp.ID.String(), map[string]any{
		"name":  resp.Name,
		"type":  string(resp.Type),
		"value": resp.Value.String(),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCommissionRules(c *gin.Context) {
	isActive, err := parseOptionalBool(c.Query("is_active"))
	if err != nil {
		AbortWithError(c, newValidationError("is_active", "invalid_is_active", "invalid is_active"))
		return
	}
	categoryID, err := parseOptionalSnowflakeID(c.Query("category_id"))
	if err != nil {
		AbortWithError(c, newValidationError("category_id", "invalid_category_id", "invalid category_id"))
		return
	}
	sellerID, err := parseOptionalSnowflakeID(c.Query("seller_id"))
	if err != nil {
		AbortWithError(c, newValidationError("seller_id", "invalid_seller_id", "invalid seller_id"))
		return
	}

	resp, err := s.ruleSvc.List(c.Request.Context(), ruledomain.ListRulesRequest{
		IsActive:   isActive,
		CategoryID: categoryID,
		SellerID:   sellerID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetCommissionRule(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	resp, err := s.ruleSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateRuleRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Type          *string          `json:"type"`
	Value         *decimal.Decimal `json:"value"`
	Priority      *int             `json:"priority"`
	ValidFrom     *time.Time       `json:"valid_from"`
	ValidUntil    *time.Time       `json:"valid_until"`
	IsActive      *bool            `json:"is_active"`
	MinOrderValue *decimal.Decimal `json:"min_order_value"`
	MaxOrderValue *decimal.Decimal `json:"max_order_value"`
}

func (s *Server) UpdateCommissionRule(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	var req updateRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var ruleType *ruledomain.RuleType
	if req.Type != nil {
		parsed := ruledomain.RuleType(strings.ToUpper(strings.TrimSpace(*req.Type)))
		ruleType = &parsed
	}

	resp, err := s.ruleSvc.Update(c.Request.Context(), id, ruledomain.UpdateRuleRequest{
		Name:          req.Name,
		Description:   req.Description,
		Type:          ruleType,
		Value:         req.Value,
		Priority:      req.Priority,
		ValidFrom:     req.ValidFrom,
		ValidUntil:    req.ValidUntil,
		IsActive:      req.IsActive,
		MinOrderValue: req.MinOrderValue,
		MaxOrderValue: req.MaxOrderValue,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "commission_rule.update", "commission_rule", resp.ID.String(), nil)

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteCommissionRule(c *gin.Context) {
	id, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return
	}

	if err := s.ruleSvc.Delete(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "commission_rule.delete", "commission_rule", id.String(), nil)

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

// recordAudit writes a best-effort audit entry; failures never fail the
// request that triggered them.
func (s *Server) recordAudit(c *gin.Context, action, targetType, targetID string, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	_ = s.auditSvc.Record(c.Request.Context(), auditdomain.Entry{
		ActorType:  auditdomain.ActorTypeAdmin,
		Action:     action,
		TargetType: targetType,
		TargetID:   &targetID,
		Metadata:   metadata,
	})
}
