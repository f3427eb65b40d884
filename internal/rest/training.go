package rest

import (
	"errors"
	"net/http"

	"artMarket/business/recommend"
	"artMarket/domain"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	TrainingHandler struct {
		trainer TrainingService
	}

	TrainingService interface {
		TrainAsync() error
		Status() domain.TrainingStatus
	}
)

func NewTrainingHandler(trainer TrainingService) *TrainingHandler {
	return &TrainingHandler{trainer: trainer}
}

func (h *TrainingHandler) Train(c echo.Context) error {
	if err := h.trainer.TrainAsync(); err != nil {
		if errors.Is(err, recommend.ErrTrainingInProgress) {
			return c.JSON(http.StatusConflict, ResponseError{Message: "training already in progress"})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"message": "training started",
	})
}

func (h *TrainingHandler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, fres.Response.StatusOK(h.trainer.Status()))
}
