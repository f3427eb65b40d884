package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"artMarket/business/recommend"
	"artMarket/domain"
	"artMarket/pkg/metrics"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type ResponseError struct {
	Message string `json:"message"`
}

type (
	RecommendationHandler struct {
		validate *validator.Validate
		service  RecommenderService
	}

	RecommenderService interface {
		Recommend(ctx context.Context, userID uint, topN int) ([]domain.Product, error)
		SimilarUsers(ctx context.Context, userID uint, limit int) ([]uint, error)
		UserVector(ctx context.Context, userID uint) (recommend.FeatureVector, error)
		ListProducts(ctx context.Context) ([]domain.Product, error)
		ModelSummary() (bool, int)
	}

	RecommendQuery struct {
		Limit int `query:"limit" validate:"omitempty,gte=1,lte=100"`
	}
)

func NewRecommendationHandler(svc RecommenderService) *RecommendationHandler {
	return &RecommendationHandler{
		validate: validator.New(),
		service:  svc,
	}
}

func userIDParam(c echo.Context) (uint, error) {
	raw := c.Param("user_id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func (h *RecommendationHandler) Recommend(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.RecommendLatency.Observe(time.Since(start).Seconds()) }()

	userID, err := userIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid user id"})
	}

	var q RecommendQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if err := h.validate.Struct(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}

	recs, err := h.service.Recommend(c.Request().Context(), userID, q.Limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	metrics.RecommendRequests.Inc()
	return c.JSON(http.StatusOK, fres.Response.StatusOK(recs))
}

func (h *RecommendationHandler) SimilarUsers(c echo.Context) error {
	userID, err := userIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid user id"})
	}

	var q RecommendQuery
	if err := c.Bind(&q); err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}
	if q.Limit <= 0 {
		q.Limit = 5
	}

	users, err := h.service.SimilarUsers(c.Request().Context(), userID, q.Limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(users))
}

func (h *RecommendationHandler) UserVector(c echo.Context) error {
	userID, err := userIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid user id"})
	}

	vector, err := h.service.UserVector(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, recommend.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, ResponseError{Message: "user has no preference signal"})
		}
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(vector))
}

func (h *RecommendationHandler) ListProducts(c echo.Context) error {
	products, err := h.service.ListProducts(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ResponseError{Message: err.Error()})
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(products))
}

func (h *RecommendationHandler) Health(c echo.Context) error {
	loaded, users := h.service.ModelSummary()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"model_loaded":   loaded,
		"users_in_model": users,
	})
}
