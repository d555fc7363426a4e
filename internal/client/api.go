// Package client talks to the fee portal API the way the payment page does:
// it requests checkout signatures, polls order status and submits forms.
package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"feeportal/internal/domain"
)

// APIError is a non-2xx response from the portal.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("portal returned %d", e.StatusCode)
	}
	return fmt.Sprintf("portal returned %d: %s", e.StatusCode, e.Message)
}

type errorBody struct {
	Error string `json:"error"`
}

// SignatureRequest asks the portal to sign a checkout.
type SignatureRequest struct {
	MerchantID  string `json:"merchant_id"`
	OrderID     string `json:"order_id"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	StudentName string `json:"student_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// SignatureResponse is the signed checkout returned by the portal.
type SignatureResponse struct {
	Hash      string `json:"hash"`
	Amount    string `json:"amount"`
	Sandbox   bool   `json:"sandbox"`
	NotifyURL string `json:"notify_url"`
}

// FormSubmission is the fee form posted once payment is settled or a receipt
// is attached.
type FormSubmission struct {
	StudentName    string `json:"studentName"`
	AdmissionNo    string `json:"admissionNo"`
	ParentName     string `json:"parentName"`
	Grade          string `json:"grade"`
	Medium         string `json:"medium"`
	Phone          string `json:"phone"`
	FeesType       string `json:"feesType"`
	Month          string `json:"month"`
	PaymentMethod  string `json:"paymentMethod"`
	Amount         string `json:"amount"`
	ReceiptURL     string `json:"receiptUrl,omitempty"`
	PayHereOrderID string `json:"payhereOrderId,omitempty"`
}

// APIClient is an HTTP client for the portal's /api endpoints.
type APIClient struct {
	http *resty.Client
}

// NewAPIClient creates a new APIClient for the portal at baseURL.
func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	httpClient := resty.New()
	httpClient.SetBaseURL(strings.TrimRight(baseURL, "/"))
	httpClient.SetTimeout(timeout)
	httpClient.SetHeader("Accept", "application/json")

	return &APIClient{http: httpClient}
}

// RequestSignature asks the portal to sign a checkout.
func (c *APIClient) RequestSignature(ctx context.Context, req SignatureRequest) (*SignatureResponse, error) {
	var out SignatureResponse
	if err := c.postJSON(ctx, "/api/payhere/hash", req, &out, nil); err != nil {
		return nil, err
	}
	return &out, nil
}

// QueryStatus returns the current status of an order.
func (c *APIClient) QueryStatus(ctx context.Context, orderID string) (domain.OrderStatus, error) {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.postJSON(ctx, "/api/payhere/status", map[string]string{"order_id": orderID}, &out, nil); err != nil {
		return "", err
	}
	return domain.ParseOrderStatus(out.Status), nil
}

// SubmitForm records a fee form. A non-empty idempotencyKey makes retries safe.
func (c *APIClient) SubmitForm(ctx context.Context, form FormSubmission, idempotencyKey string) error {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}
	return c.postJSON(ctx, "/api/submit-form", form, nil, headers)
}

// SendNotification posts a raw form-encoded notification, as the gateway would.
func (c *APIClient) SendNotification(ctx context.Context, body string) error {
	var apiErr errorBody
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetBody(body).
		SetError(&apiErr).
		Post("/api/payhere/notify")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return &APIError{StatusCode: resp.StatusCode(), Message: apiErr.Error}
	}
	return nil
}

func (c *APIClient) postJSON(ctx context.Context, path string, body, result any, headers map[string]string) error {
	var apiErr errorBody
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeaders(headers).
		SetBody(body).
		SetError(&apiErr)
	if result != nil {
		req.SetResult(result)
	}

	resp, err := req.Post(path)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return &APIError{StatusCode: resp.StatusCode(), Message: apiErr.Error}
	}
	return nil
}
