package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"feeportal/internal/service"
)

// maxNotificationBytes bounds a webhook body; real notifications are well under 4 KiB.
const maxNotificationBytes = 64 << 10

// PayHereHandler handles the gateway-facing HTTP endpoints.
type PayHereHandler struct {
	initiationService *service.InitiationService
	reconcilerService *service.ReconcilerService
	statusService     *service.StatusService
}

// NewPayHereHandler creates a new PayHereHandler.
func NewPayHereHandler(
	initiationService *service.InitiationService,
	reconcilerService *service.ReconcilerService,
	statusService *service.StatusService,
) *PayHereHandler {
	return &PayHereHandler{
		initiationService: initiationService,
		reconcilerService: reconcilerService,
		statusService:     statusService,
	}
}

// HashRequest is the HTTP request body for signing a checkout.
type HashRequest struct {
	MerchantID  string     `json:"merchant_id"`
	OrderID     string     `json:"order_id"`
	Amount      flexString `json:"amount"`
	Currency    string     `json:"currency"`
	StudentName string     `json:"student_name"`
	Phone       string     `json:"phone"`
}

// HashResponse carries the checkout signature and the values it was computed over.
type HashResponse struct {
	Hash      string `json:"hash"`
	Amount    string `json:"amount"`
	Sandbox   bool   `json:"sandbox"`
	NotifyURL string `json:"notify_url,omitempty"`
}

// StatusRequest is the HTTP request body for a status query.
type StatusRequest struct {
	OrderID string `json:"order_id"`
}

// StatusResponse is the HTTP response for a status query.
type StatusResponse struct {
	Status string `json:"status"`
}

// Hash handles POST /api/payhere/hash
func (h *PayHereHandler) Hash(c *gin.Context) {
	var req HashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	desc, err := h.initiationService.Initiate(c.Request.Context(), service.InitiateRequest{
		MerchantID:  req.MerchantID,
		OrderID:     req.OrderID,
		Amount:      string(req.Amount),
		Currency:    req.Currency,
		StudentName: req.StudentName,
		Phone:       req.Phone,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, HashResponse{
		Hash:      desc.Hash,
		Amount:    desc.Amount,
		Sandbox:   desc.Sandbox,
		NotifyURL: desc.NotifyURL,
	})
}

// Notify handles POST /api/payhere/notify
func (h *PayHereHandler) Notify(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxNotificationBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if _, err := h.reconcilerService.HandleNotification(c.Request.Context(), body); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, SuccessResponse{Success: true})
}

// Status handles POST /api/payhere/status
func (h *PayHereHandler) Status(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Order ID required"})
		return
	}

	status, err := h.statusService.GetStatus(c.Request.Context(), req.OrderID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, StatusResponse{Status: string(status)})
}
