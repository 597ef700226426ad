package server

import (
	"net/http"
	"strings"

	settingsdomain "github.com/bazaarlabs/settlement/internal/settings/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListSettings(c *gin.Context) {
	resp, err := s.settingsSvc.List(c.Request.Context(), c.Query("category"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSetting(c *gin.Context) {
	resp, err := s.settingsSvc.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type upsertSettingRequest struct {
	Category    string `json:"category"`
	Value       string `json:"value"`
	ValueType   string `json:"value_type"`
	Label       string `json:"label"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

func (s *Server) UpsertSetting(c *gin.Context) {
	var req upsertSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.settingsSvc.Upsert(c.Request.Context(), settingsdomain.UpsertSettingRequest{
		Key:         c.Param("key"),
		Category:    strings.TrimSpace(req.Category),
		Value:       strings.TrimSpace(req.Value),
		ValueType:   settingsdomain.ValueType(strings.ToUpper(strings.TrimSpace(req.ValueType))),
		Label:       strings.TrimSpace(req.Label),
		Description: strings.TrimSpace(req.Description),
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "setting.upsert", "setting", resp.Key, map[string]any{
		"value_type": string(resp.ValueType),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
