package server

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	overridedomain "github.com/bazaarlabs/settlement/internal/override/domain"
	payoutdomain "github.com/bazaarlabs/settlement/internal/payout/domain"
	ruledomain "github.com/bazaarlabs/settlement/internal/rule/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"validation", ruledomain.ErrInvalidValue, http.StatusBadRequest, "validation_error"},
		{"invalid method", payoutdomain.ErrInvalidMethod, http.StatusBadRequest, "validation_error"},
		{"not found", ruledomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"gorm not found", gorm.ErrRecordNotFound, http.StatusNotFound, "not_found"},
		{"duplicate scope", overridedomain.ErrDuplicateScope, http.StatusConflict, "conflict"},
		{"invalid transition", payoutdomain.ErrInvalidTransition, http.StatusConflict, "conflict"},
		{"wrapped transition", fmt.Errorf("%w: payout is COMPLETED", payoutdomain.ErrInvalidTransition), http.StatusConflict, "conflict"},
		{"below minimum", payoutdomain.ErrBelowMinimum, http.StatusUnprocessableEntity, "unprocessable"},
		{"nothing to pay", payoutdomain.ErrNothingToPay, http.StatusUnprocessableEntity, "unprocessable"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.typ, payload.Type)
		})
	}
}

func TestValidationErrorsPayload(t *testing.T) {
	status, payload := mapError(newValidationError("seller_id", "invalid_seller_id", "must be numeric"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Len(t, payload.Errors, 1)
	assert.Equal(t, "seller_id", payload.Errors[0].Field)
}

func TestErrorHandlingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandlingMiddleware())
	r.GET("/boom", func(c *gin.Context) {
		AbortWithError(c, payoutdomain.ErrNotFound)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}
