package utils

import (
	"context"

	"go.uber.org/zap"
)

type runContextKey struct{}

func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runContextKey{}, runID)
}

func RunIDFromContext(ctx context.Context) string {
	runID, _ := ctx.Value(runContextKey{}).(string)
	return runID
}

// ContextLog tags log with the run id carried by ctx.
func ContextLog(ctx context.Context, log *zap.SugaredLogger) *zap.SugaredLogger {
	runID := RunIDFromContext(ctx)
	if runID == "" {
		return log
	}
	return log.With(zap.String("run", runID))
}
