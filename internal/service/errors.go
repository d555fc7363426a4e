package service

import "errors"

var (
	// ErrMissingField is returned when a required request field is empty.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidAmount is returned when an amount is not a positive decimal.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidOrderID is returned when an order id is empty.
	ErrInvalidOrderID = errors.New("invalid order id")

	// ErrInvalidPhone is returned when a phone number is not exactly 10 digits.
	ErrInvalidPhone = errors.New("phone number must be exactly 10 digits")

	// ErrInvalidPaymentMethod is returned for payment methods other than payhere and bank.
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// ErrMissingReceipt is returned when a bank transfer has no receipt URL.
	ErrMissingReceipt = errors.New("bank transfer requires a receipt")

	// ErrOrderConflict is returned when an existing order id is re-initiated
	// with different terms.
	ErrOrderConflict = errors.New("order already exists with different details")

	// ErrDuplicateSubmission is returned when a PayHere order is already in the ledger.
	ErrDuplicateSubmission = errors.New("a submission for this order already exists")

	// ErrConfiguration is returned when merchant credentials are not configured.
	ErrConfiguration = errors.New("configuration error")

	// ErrMalformedNotification is returned when a webhook body cannot be parsed.
	ErrMalformedNotification = errors.New("malformed notification")

	// ErrSignatureMismatch is returned when a webhook signature does not verify.
	ErrSignatureMismatch = errors.New("signature mismatch")

	// ErrLedgerUnavailable is returned when a submission could not be recorded.
	ErrLedgerUnavailable = errors.New("failed to submit form")

	// ErrMissingFile is returned when an upload carries no content.
	ErrMissingFile = errors.New("no file provided")

	// ErrUnsupportedFileType is returned for uploads that are neither images nor PDFs.
	ErrUnsupportedFileType = errors.New("invalid file type, only images and PDFs are allowed")

	// ErrFileTooLarge is returned when an upload exceeds the configured limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrStorageUnavailable is returned when the object store rejects an upload.
	ErrStorageUnavailable = errors.New("failed to upload file")

	// ErrEventQueueFull is returned when the post-commit queue cannot accept an event.
	ErrEventQueueFull = errors.New("event queue full")

	// ErrDispatcherStopped is returned when publishing after shutdown.
	ErrDispatcherStopped = errors.New("dispatcher stopped")
)
