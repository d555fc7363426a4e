package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a fee was paid.
type PaymentMethod string

const (
	PaymentMethodPayHere PaymentMethod = "payhere"
	PaymentMethodBank    PaymentMethod = "bank"
)

// SubmissionStatusPendingVerification is recorded for bank transfers until an
// administrator checks the uploaded receipt.
const SubmissionStatusPendingVerification = "Pending Verification"

// FeeSubmission is one row of the fee ledger.
type FeeSubmission struct {
	ID             string
	Timestamp      time.Time
	StudentName    string
	AdmissionNo    string
	ParentName     string
	Grade          string
	Medium         string
	Phone          string
	FeesType       string
	Month          string
	PaymentMethod  PaymentMethod
	Amount         decimal.Decimal
	ReceiptURL     string
	PayHereOrderID string
	Status         string
}
