package service

import (
	dErrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/domain-errors"
)

// Boundary errors are deliberately generic. Neither message distinguishes
// "unknown account" from "wrong password" or "no secret on file" from
// "wrong code"; doing so would let callers enumerate accounts.
var (
	ErrInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "incorrect email or password")
	ErrInvalidMfaCode     = dErrors.New(dErrors.CodeUnauthorized, "incorrect code")
)
