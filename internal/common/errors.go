package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrExtraction   = errors.New("extraction failed")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// OCRFailedError is the terminal outcome when the OCR backend itself fails.
// It is user-actionable (retake the photo) and must stay distinguishable
// from generic pipeline failures.
type OCRFailedError struct {
	Message string
}

func (e *OCRFailedError) Error() string {
	return fmt.Sprintf("ocr_failed: %s", e.Message)
}

// NotMedicalBillError is the terminal outcome when the bill-type validator
// rejects the document. Confidence is 0-100.
type NotMedicalBillError struct {
	Message    string
	Confidence int
}

func (e *NotMedicalBillError) Error() string {
	return fmt.Sprintf("not_medical_bill: %s (confidence %d)", e.Message, e.Confidence)
}

// IsOCRFailed reports whether err is a terminal OCR failure.
func IsOCRFailed(err error) bool {
	var oe *OCRFailedError
	return errors.As(err, &oe)
}

// IsNotMedicalBill reports whether err is a validator rejection.
func IsNotMedicalBill(err error) bool {
	var ne *NotMedicalBillError
	return errors.As(err, &ne)
}
