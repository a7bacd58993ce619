package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/openresto/restaurant-orders/services"
	"github.com/openresto/restaurant-orders/utils"
)

var ErrNoPermission = errors.New("you don't have permission to perform this action")

// respondServiceError maps the service failure taxonomy onto HTTP codes.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrProductNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrEmptyOrder),
		errors.Is(err, services.ErrTableUnavailable),
		errors.Is(err, services.ErrProductDisabled),
		errors.Is(err, services.ErrIllegalTransition):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrForbidden):
		utils.RespondError(c, http.StatusForbidden, err)
	case errors.Is(err, services.ErrInvalidToken):
		utils.RespondError(c, http.StatusUnauthorized, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
