package rest

import (
	"context"
	"errors"
	"net/http"

	"artMarket/business/recommend"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	EventHandler struct {
		validate *validator.Validate
		updater  EventService
	}

	EventService interface {
		RecordView(ctx context.Context, userID uint, productID uint64, durationSeconds *float64) error
		RecordPurchase(ctx context.Context, userID uint, productIDs []uint64, eventWeight *float64) error
	}

	ViewEventRequest struct {
		UserID          uint     `json:"user_id" validate:"required"`
		ProductID       uint64   `json:"product_id" validate:"required"`
		DurationSeconds *float64 `json:"duration_seconds" validate:"omitempty,gte=0"`
	}

	PurchaseEventRequest struct {
		UserID      uint     `json:"user_id" validate:"required"`
		ProductIDs  []uint64 `json:"product_ids" validate:"required,min=1,dive,required"`
		EventWeight *float64 `json:"event_weight" validate:"omitempty,gt=0"`
	}
)

func NewEventHandler(updater EventService) *EventHandler {
	return &EventHandler{
		validate: validator.New(),
		updater:  updater,
	}
}

func (h *EventHandler) RecordView(c echo.Context) error {
	var req ViewEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	err := h.updater.RecordView(c.Request().Context(), req.UserID, req.ProductID, req.DurationSeconds)
	if err != nil {
		return eventError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("view event recorded"))
}

func (h *EventHandler) RecordPurchase(c echo.Context) error {
	var req PurchaseEventRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	err := h.updater.RecordPurchase(c.Request().Context(), req.UserID, req.ProductIDs, req.EventWeight)
	if err != nil {
		return eventError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated("purchase event recorded"))
}

func eventError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, recommend.ErrProductNotFound):
		return c.JSON(http.StatusNotFound, ResponseError{Message: err.Error()})
	case errors.Is(err, recommend.ErrNoValidProducts):
		return c.JSON(http.StatusUnprocessableEntity, ResponseError{Message: err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}
}
