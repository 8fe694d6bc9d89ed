package utils

import (
	"context"

	"asset-system/pkg/contextkeys"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/types"
)

func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok || userID == 0 {
		return 0, apperrors.ErrUserIDNotFoundInContext
	}
	return userID, nil
}

func GetTenantIDFromCtx(ctx context.Context) (uint64, error) {
	tenantID, ok := ctx.Value(contextkeys.TenantIDKey).(uint64)
	if !ok || tenantID == 0 {
		return 0, apperrors.ErrTenantIDNotFoundInContext
	}
	return tenantID, nil
}

// ActorFromCtx собирает types.Actor из значений, положенных AuthMiddleware.
func ActorFromCtx(ctx context.Context) (types.Actor, error) {
	userID, err := GetUserIDFromCtx(ctx)
	if err != nil {
		return types.Actor{}, err
	}
	tenantID, err := GetTenantIDFromCtx(ctx)
	if err != nil {
		return types.Actor{}, err
	}
	return types.Actor{UserID: userID, TenantID: tenantID}, nil
}

// WithActor кладёт пользователя и тенант в контекст. Используется middleware и тестами.
func WithActor(ctx context.Context, actor types.Actor) context.Context {
	ctx = context.WithValue(ctx, contextkeys.UserIDKey, actor.UserID)
	return context.WithValue(ctx, contextkeys.TenantIDKey, actor.TenantID)
}
