package server

import (
	"net/http"
	"strings"

	auditdomain "github.com/bazaarlabs/settlement/internal/audit/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListAuditLogs(c *gin.Context) {
	startAt, err := parseOptionalTime(c.Query("start_at"), false)
	if err != nil {
		AbortWithError(c, newValidationError("start_at", "invalid_start_at", "invalid start_at"))
		return
	}
	endAt, err := parseOptionalTime(c.Query("end_at"), true)
	if err != nil {
		AbortWithError(c, newValidationError("end_at", "invalid_end_at", "invalid end_at"))
		return
	}

	resp, err := s.auditSvc.List(c.Request.Context(), auditdomain.ListRequest{
		Filter: auditdomain.ListFilter{
			Action:     strings.TrimSpace(c.Query("action")),
			TargetType: strings.TrimSpace(c.Query("target_type")),
			TargetID:   strings.TrimSpace(c.Query("target_id")),
			ActorType:  strings.TrimSpace(c.Query("actor_type")),
			StartAt:    startAt,
			EndAt:      endAt,
		},
		Page: pageFromQuery(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
