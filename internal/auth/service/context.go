package service

import (
	"context"

	"github.com/gsm1298/event-travel-planner-backend-sub000/internal/platform/middleware"
)

// Thin indirection over the platform middleware getters so service code and
// tests never touch HTTP types directly.

func userAgentFrom(ctx context.Context) string {
	return middleware.GetUserAgent(ctx)
}

func clientIPFrom(ctx context.Context) string {
	return middleware.GetClientIP(ctx)
}
