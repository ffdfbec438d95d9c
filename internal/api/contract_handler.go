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

type ContractService interface {
	Create(ctx context.Context, userID int64, input service.CreateContractInput) (*model.Contract, error)
	Get(ctx context.Context, userID, id int64) (*model.Contract, error)
	List(ctx context.Context, userID int64) ([]*model.Contract, error)
	UpdateStatus(ctx context.Context, userID, id int64, status model.ContractStatus) (*model.Contract, error)
	Delete(ctx context.Context, userID, id int64) error
}

type ContractHandler struct {
	contracts ContractService
	logger    *zap.Logger
}

func NewContractHandler(contracts ContractService, logger *zap.Logger) *ContractHandler {
	return &ContractHandler{contracts: contracts, logger: logger}
}

func (h *ContractHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req struct {
		Title        string    `json:"title"`
		Counterparty string    `json:"counterparty"`
		StartDate    time.Time `json:"start_date"`
		EndDate      time.Time `json:"end_date"`
		ValueCents   int64     `json:"value_cents"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.Validation("invalid_body", "invalid request body"))
		return
	}

	contract, err := h.contracts.Create(c.Request.Context(), userID, service.CreateContractInput{
		Title:        req.Title,
		Counterparty: req.Counterparty,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		ValueCents:   req.ValueCents,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, contract)
}

func (h *ContractHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.logger, apperr.Validation("invalid_id", "contract id must be an integer"))
		return
	}

	contract, err := h.contracts.Get(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

func (h *ContractHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	contracts, err := h.contracts.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"contracts": contracts})
}

func (h *ContractHandler) UpdateStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.logger, apperr.Validation("invalid_id", "contract id must be an integer"))
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, apperr.Validation("invalid_body", "invalid request body"))
		return
	}

	contract, err := h.contracts.UpdateStatus(c.Request.Context(), userID, id, model.ContractStatus(req.Status))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}

func (h *ContractHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, h.logger, apperr.Validation("invalid_id", "contract id must be an integer"))
		return
	}

	if err := h.contracts.Delete(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
