package utils

import "errors"

var (
	ErrInvalidPackage      = errors.New("invalid package selection")
	ErrUnknownPackage      = errors.New("unknown package")
	ErrGatewayUnavailable  = errors.New("payment gateway not configured")
	ErrGateway             = errors.New("payment gateway error")
	ErrOrderCreationFailed = errors.New("order creation failed")
	ErrInvalidSignature    = errors.New("invalid payment signature")
	ErrInvalidWebhook      = errors.New("invalid webhook payload")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTransactionClosed   = errors.New("transaction already closed")
	ErrInvoiceNotFound     = errors.New("invoice not found")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotFound    = errors.New("account not found")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrDatabaseError      = errors.New("database error")
)
