package utils

import (
	"context"

	"felix-hub/pkg/contextkeys"
	apperrors "felix-hub/pkg/errors"
)

func GetMechanicIDFromCtx(ctx context.Context) (uint64, error) {
	mechanicID, ok := ctx.Value(contextkeys.MechanicIDKey).(uint64)
	if !ok || mechanicID == 0 {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return mechanicID, nil
}

func WithMechanicID(ctx context.Context, mechanicID uint64) context.Context {
	return context.WithValue(ctx, contextkeys.MechanicIDKey, mechanicID)
}

const SystemActor = "system"

func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, contextkeys.ActorKey, actor)
}

// ActorFromCtx - кто выполняет действие (для истории заказа).
func ActorFromCtx(ctx context.Context) string {
	if actor, ok := ctx.Value(contextkeys.ActorKey).(string); ok && actor != "" {
		return actor
	}
	return SystemActor
}
