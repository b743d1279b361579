package service_test

import (
	"context"

	"github.com/larder-app/larder/backend/internal/types"
)

func anonymousCtx() context.Context {
	return context.Background()
}

func shareOpts() types.ShareOptions {
	return types.ShareOptions{}
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool { return &v }
