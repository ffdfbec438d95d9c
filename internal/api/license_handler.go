package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pacta-backend/internal/apperr"
	"pacta-backend/internal/model"
	"pacta-backend/internal/service"
)

type LicenseService interface {
	Create(ctx context.Context, userID int64, input service.CreateLicenseInput) (*model.License, error)
	Get(ctx context.Context, userID, id int64) (*model.License, error)
	List(ctx context.Context, userID int64) ([]*model.License, error)
	Delete(ctx context.Context, userID, id int64) error
}

type LicenseHandler struct {
	licenses LicenseService
	logger   *zap.Logger
}

func NewLicenseHandler(licenses LicenseService, logger *zap.Logger) *LicenseHandler {
	return &LicenseHandler{licenses: licenses, logger: logger}
}

func (h *LicenseHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Name      string    `json:"name"`
		Vendor    string    `json:"vendor"`
		Seats     int       `json:"seats"`
		StartDate time.Time `json:"start_date"`
		EndDate   time.Time `json:"end_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.Validation("invalid_body", "invalid request body"))
		return
	}

	license, err := h.licenses.Create(c.Request.Context(), userID, service.CreateLicenseInput{
		Name:      req.Name,
		Vendor:    req.Vendor,
		Seats:     req.Seats,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, license)
}

func (h *LicenseHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.logger, apperr.Validation("invalid_id", "license id must be an integer"))
		return
	}

	license, err := h.licenses.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, license)
}

func (h *LicenseHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	licenses, err := h.licenses.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"licenses": licenses})
}

func (h *LicenseHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.logger, apperr.Validation("invalid_id", "license id must be an integer"))
		return
	}

	if err := h.licenses.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
