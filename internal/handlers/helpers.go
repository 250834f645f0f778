package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Antonio-217/controle-financeiro/internal/budget"
	apperrors "github.com/Antonio-217/controle-financeiro/internal/errors"
	"github.com/Antonio-217/controle-financeiro/internal/middleware"
	"github.com/Antonio-217/controle-financeiro/internal/session"
	"github.com/Antonio-217/controle-financeiro/internal/uuid"
)

// getSession extracts the authenticated caller from the Gin context.
// Returns ErrUnauthorized if not present and ErrNoGroup if the caller has no group.
func getSession(c *gin.Context) (session.Session, error) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return session.Session{}, apperrors.ErrUnauthorized
	}
	if err := sess.Validate(); err != nil {
		return session.Session{}, err
	}
	return sess, nil
}

// parsePathID reads a UUID path parameter.
//
//nolint:unparam // param is intentionally generic for reuse across handlers with different path params
func parsePathID(c *gin.Context, param string) (string, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// PeriodQuery selects a calendar month.
type PeriodQuery struct {
	Period string `form:"period" binding:"omitempty,period"`
}

// parsePeriodQuery reads ?period=YYYY-MM, defaulting to the month of now.
// The boolean reports whether the caller asked for a period.
func parsePeriodQuery(c *gin.Context, now time.Time) (budget.Period, bool, error) {
	var q PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return budget.Period{}, false, apperrors.Wrap(apperrors.ErrInvalidPeriod, err)
	}
	if q.Period == "" {
		return budget.CurrentPeriod(now), false, nil
	}
	p, err := budget.ParsePeriod(q.Period)
	if err != nil {
		return budget.Period{}, false, err
	}
	return p, true, nil
}

// respondWithError writes a consistent JSON error response.
func respondWithError(c *gin.Context, err error) {
	middleware.WriteError(c, err)
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}
