package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/chibuike2003/palgunn/pkg/errors"
	"github.com/chibuike2003/palgunn/pkg/response"
)

// Codes shared by every module.
const (
	codeInvalidParams = 10001
	codeConflict      = 10006
	codeNotFound      = 10007
)

// respondError maps an error without a module specific code by its class.
// Internal errors are attached to the context for the request logger.
func respondError(c *gin.Context, err error) {
	switch apperrors.KindOf(err) {
	case apperrors.KindValidation:
		respondValidation(c, codeInvalidParams, err)
	case apperrors.KindConflict:
		response.Conflict(c, codeConflict, message(err))
	case apperrors.KindNotFound:
		response.NotFound(c, codeNotFound, message(err))
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

// respondValidation writes a 400 carrying the per-field failures, if any.
func respondValidation(c *gin.Context, code int, err error) {
	if fields := apperrors.Fields(err); len(fields) > 0 {
		response.ErrorWithData(c, http.StatusBadRequest, code, message(err), gin.H{"fields": fields})
		return
	}
	response.BadRequest(c, code, message(err))
}

// message strips the class prefix of a sentinel wrapped as "<class>: text".
func message(err error) string {
	msg := err.Error()
	for _, class := range []error{apperrors.ErrValidation, apperrors.ErrConflict, apperrors.ErrNotFound} {
		msg = strings.TrimPrefix(msg, class.Error()+": ")
	}
	return msg
}

// bindFailed the standard reply to a request that could not be bound.
func bindFailed(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, codeInvalidParams, "invalid request parameters", err.Error())
}
