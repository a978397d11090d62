package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"financing-ledger/domain"
	"financing-ledger/service"
)

type FinancingHandler struct {
	service *service.FinancingService
	logger  logrus.FieldLogger
}

func NewFinancingHandler(service *service.FinancingService, logger logrus.FieldLogger) *FinancingHandler {
	return &FinancingHandler{service: service, logger: logger}
}

func (h *FinancingHandler) Create(c *gin.Context) {
	var input domain.FinancingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	f, err := h.service.CreateRecord(c.Request.Context(), input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, f)
}

func (h *FinancingHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	f, err := h.service.GetRecord(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, f)
}

func (h *FinancingHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var input domain.StatusUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	f, err := h.service.UpdateStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, f)
}

func (h *FinancingHandler) ListByStatus(c *gin.Context) {
	list, err := h.service.ListByStatus(c.Request.Context(), domain.Status(c.Param("status")))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *FinancingHandler) ListAll(c *gin.Context) {
	list, err := h.service.ListAll(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *FinancingHandler) Installments(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	plan, err := h.service.Installments(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid financing id: " + c.Param("id")})
		return 0, false
	}
	return id, true
}
