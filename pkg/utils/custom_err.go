package utils

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidPage        = errors.New("invalid page parameter")
	ErrInvalidPageSize    = errors.New("invalid page size parameter")
	ErrDatabaseError      = errors.New("database error")
	ErrInvalidCSRF        = errors.New("invalid csrf token")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrGateway            = errors.New("payment gateway error")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")

	ErrAccountNotFound     = errors.New("account not found")
	ErrListNotFound        = errors.New("gift list not found")
	ErrGiftNotFound        = errors.New("gift not found")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrPayoutNotFound      = errors.New("payout not found")
	ErrNotFound            = errors.New("not found")

	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrRutAlreadyExists      = errors.New("rut already exists")
	ErrCategoryAlreadyExists = errors.New("category already exists")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrListExpired           = errors.New("gift list has expired")
	ErrEmptyCart             = errors.New("cart is empty")
)
