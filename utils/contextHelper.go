package utils

import (
	"context"

	"github.com/itehadironstore/steelbooks_backend/appctx"
)

// Alias the shared context key type so existing code keeps working.
type contextKey = appctx.ContextKey

var (
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
	ContextKeyTimezone      = appctx.ContextKeyTimezone
	ContextKeyActor         = appctx.ContextKeyActor
)

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func GetTimezoneFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyTimezone)
}

func SetTimezoneInContext(ctx context.Context, timezone string) context.Context {
	return appctx.Set(ctx, ContextKeyTimezone, timezone)
}

func GetActorFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyActor)
}

func SetActorInContext(ctx context.Context, actor string) context.Context {
	return appctx.Set(ctx, ContextKeyActor, actor)
}
