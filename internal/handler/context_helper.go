package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-schedule-api/internal/models"
	appErrors "github.com/noah-isme/gym-schedule-api/pkg/errors"
	"github.com/noah-isme/gym-schedule-api/pkg/response"
)

func sessionNumberParam(c *gin.Context) (int, error) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "session number must be a positive integer")
	}
	return number, nil
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload")
}

// respondError adds structured conflict detail to 409 responses.
func respondError(c *gin.Context, err error) {
	var conflictErr *models.ScheduleConflictError
	if !errors.As(err, &conflictErr) {
		response.Error(c, err)
		return
	}
	appErr := appErrors.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.JSON(appErr.Status, response.Envelope{
		Error: appErr,
		Meta:  map[string]interface{}{"conflicts": conflictErr.Conflicts},
	})
}
