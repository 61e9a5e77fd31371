package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/marketplace-backend/internal/domain/aggregates"
	"github.com/yungbote/marketplace-backend/internal/platform/apierr"
)

// StatusFor maps an aggregate error code to its HTTP status.
func StatusFor(code domainagg.ErrorCode) int {
	switch code {
	case domainagg.CodeValidation, domainagg.CodeInvalidQuantity:
		return http.StatusBadRequest
	case domainagg.CodeNotFound, domainagg.CodeEntryNotFound, domainagg.CodeCartNotFound, domainagg.CodeProductNotFound:
		return http.StatusNotFound
	case domainagg.CodeDuplicateEntry, domainagg.CodeInsufficientInventory, domainagg.CodeConflict:
		return http.StatusConflict
	case domainagg.CodePreconditionFailed:
		return http.StatusPreconditionFailed
	case domainagg.CodeRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondErr writes err using its *apierr.Error status or its aggregate code, falling back
// to 500 with fallbackCode.
func RespondErr(c *gin.Context, err error, fallbackCode string) {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		RespondError(c, ae.Status, ae.Code, ae.Err)
		return
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		status := StatusFor(aggErr.Code)
		if status == http.StatusServiceUnavailable {
			c.Header("Retry-After", "1")
		}
		msg := aggErr.Message
		if msg == "" {
			msg = string(aggErr.Code)
		}
		RespondError(c, status, string(aggErr.Code), errors.New(msg))
		return
	}
	RespondError(c, http.StatusInternalServerError, fallbackCode, err)
}
