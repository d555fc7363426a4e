package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"feeportal/internal/service"
)

// SubmissionHandler handles fee form submissions and receipt uploads.
type SubmissionHandler struct {
	submissionService *service.SubmissionService
	receiptService    *service.ReceiptService
}

// NewSubmissionHandler creates a new SubmissionHandler.
func NewSubmissionHandler(submissionService *service.SubmissionService, receiptService *service.ReceiptService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		receiptService:    receiptService,
	}
}

// SubmitFormRequest is the HTTP request body for a fee form.
type SubmitFormRequest struct {
	StudentName    string     `json:"studentName"`
	AdmissionNo    string     `json:"admissionNo"`
	ParentName     string     `json:"parentName"`
	Grade          string     `json:"grade"`
	Medium         string     `json:"medium"`
	Phone          string     `json:"phone"`
	FeesType       string     `json:"feesType"`
	Month          string     `json:"month"`
	PaymentMethod  string     `json:"paymentMethod"`
	Amount         flexString `json:"amount"`
	ReceiptURL     string     `json:"receiptUrl"`
	PayHereOrderID string     `json:"payhereOrderId"`
}

// UploadResponse is the HTTP response for a receipt upload.
type UploadResponse struct {
	FileURL string `json:"fileUrl"`
	Key     string `json:"key"`
}

// SubmitForm handles POST /api/submit-form
func (h *SubmissionHandler) SubmitForm(c *gin.Context) {
	var req SubmitFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	_, err := h.submissionService.Submit(c.Request.Context(), service.SubmitRequest{
		StudentName:    req.StudentName,
		AdmissionNo:    req.AdmissionNo,
		ParentName:     req.ParentName,
		Grade:          req.Grade,
		Medium:         req.Medium,
		Phone:          req.Phone,
		FeesType:       req.FeesType,
		Month:          req.Month,
		PaymentMethod:  req.PaymentMethod,
		Amount:         string(req.Amount),
		ReceiptURL:     req.ReceiptURL,
		PayHereOrderID: req.PayHereOrderID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, SuccessResponse{Success: true})
}

// UploadReceipt handles POST /api/s3-upload
func (h *SubmissionHandler) UploadReceipt(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			respondError(c, service.ErrMissingFile)
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid multipart body"})
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	// Read one byte past the limit so oversized files are detected.
	body, err := io.ReadAll(io.LimitReader(file, h.receiptService.MaxBytes()+1))
	if err != nil {
		respondError(c, err)
		return
	}

	receipt, err := h.receiptService.Upload(c.Request.Context(), header.Filename, body)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, UploadResponse{FileURL: receipt.FileURL, Key: receipt.Key})
}
