package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"feeportal/internal/domain"
	internalRedis "feeportal/internal/redis"
	"feeportal/internal/repository"
)

// SubmissionService records completed fee forms in the ledger.
type SubmissionService struct {
	ledger      repository.LedgerRepository
	statusStore internalRedis.StatusStoreInterface
	publisher   EventPublisher
}

// NewSubmissionService creates a new SubmissionService. publisher may be nil.
func NewSubmissionService(ledger repository.LedgerRepository, statusStore internalRedis.StatusStoreInterface, publisher EventPublisher) *SubmissionService {
	return &SubmissionService{
		ledger:      ledger,
		statusStore: statusStore,
		publisher:   publisher,
	}
}

// SubmitRequest is a fee form as filled in by the parent.
type SubmitRequest struct {
	StudentName    string
	AdmissionNo    string
	ParentName     string
	Grade          string
	Medium         string
	Phone          string
	FeesType       string
	Month          string
	PaymentMethod  string
	Amount         string
	ReceiptURL     string
	PayHereOrderID string
}

// Submit validates the form and appends it to the ledger.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (*domain.FeeSubmission, error) {
	if err := requireFields(map[string]string{
		"studentName":   req.StudentName,
		"admissionNo":   req.AdmissionNo,
		"parentName":    req.ParentName,
		"grade":         req.Grade,
		"medium":        req.Medium,
		"phone":         req.Phone,
		"feesType":      req.FeesType,
		"month":         req.Month,
		"paymentMethod": req.PaymentMethod,
		"amount":        req.Amount,
	}); err != nil {
		return nil, err
	}

	phone := strings.TrimSpace(req.Phone)
	if !validPhone(phone) {
		return nil, ErrInvalidPhone
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil || !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	submission := &domain.FeeSubmission{
		ID:            uuid.New().String(),
		Timestamp:     time.Now().UTC(),
		StudentName:   strings.TrimSpace(req.StudentName),
		AdmissionNo:   strings.TrimSpace(req.AdmissionNo),
		ParentName:    strings.TrimSpace(req.ParentName),
		Grade:         req.Grade,
		Medium:        req.Medium,
		Phone:         phone,
		FeesType:      req.FeesType,
		Month:         req.Month,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		Amount:        amount,
	}

	switch submission.PaymentMethod {
	case domain.PaymentMethodBank:
		if strings.TrimSpace(req.ReceiptURL) == "" {
			return nil, ErrMissingReceipt
		}
		submission.ReceiptURL = req.ReceiptURL
		submission.Status = domain.SubmissionStatusPendingVerification
	case domain.PaymentMethodPayHere:
		if strings.TrimSpace(req.PayHereOrderID) == "" {
			return nil, ErrInvalidOrderID
		}
		existing, err := s.ledger.ListByOrderID(ctx, req.PayHereOrderID)
		if err != nil {
			return nil, errors.Join(ErrLedgerUnavailable, err)
		}
		if len(existing) > 0 {
			log.Printf("[Ledger] order %s already recorded as %s", req.PayHereOrderID, existing[0].ID)
			return nil, ErrDuplicateSubmission
		}
		status, err := s.statusStore.GetStatus(ctx, req.PayHereOrderID)
		if err != nil {
			return nil, fmt.Errorf("failed to read status for %s: %w", req.PayHereOrderID, err)
		}
		submission.PayHereOrderID = req.PayHereOrderID
		submission.Status = string(status)
	default:
		return nil, ErrInvalidPaymentMethod
	}

	if err := s.ledger.Append(ctx, submission); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateSubmission
		}
		log.Printf("[Ledger] append failed for %s: %v", submission.AdmissionNo, err)
		return nil, errors.Join(ErrLedgerUnavailable, err)
	}

	log.Printf("[Ledger] recorded %s submission %s for %s", submission.PaymentMethod, submission.ID, submission.AdmissionNo)

	if submission.PaymentMethod == domain.PaymentMethodBank && s.publisher != nil {
		evt := domain.PaymentEvent{
			Type:        domain.EventBankSubmissionReceived,
			Phone:       submission.Phone,
			StudentName: submission.StudentName,
			Amount:      submission.Amount.StringFixed(2),
			OccurredAt:  submission.Timestamp,
		}
		if err := s.publisher.Publish(evt); err != nil {
			log.Printf("[Ledger] failed to queue %s for %s: %v", evt.Type, submission.ID, err)
		}
	}

	return submission, nil
}

func validPhone(phone string) bool {
	if len(phone) != 10 {
		return false
	}
	for _, r := range phone {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
