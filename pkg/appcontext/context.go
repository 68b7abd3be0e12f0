package appcontext

import (
	"context"

	"github.com/sirupsen/logrus"
)

type contextId int

const (
	runDateKeyId contextId = iota
	volumeKeyId
	containerIdKeyId
	requestIdKeyId
)

func WithRequestId(ctx context.Context, requestId string) context.Context {
	return context.WithValue(ctx, requestIdKeyId, requestId)
}

func WithRunDate(ctx context.Context, date string) context.Context {
	return context.WithValue(ctx, runDateKeyId, date)
}

func WithVolume(ctx context.Context, volume string) context.Context {
	return context.WithValue(ctx, volumeKeyId, volume)
}

func WithContainerId(ctx context.Context, containerId string) context.Context {
	return context.WithValue(ctx, containerIdKeyId, containerId)
}

func LoggerFromContext(logger logrus.FieldLogger, ctx context.Context) logrus.FieldLogger {
	if ctx == nil {
		return logger
	}

	result := logger

	if ctxRunDate, ok := ctx.Value(runDateKeyId).(string); ok && ctxRunDate != "" {
		result = result.WithField("run_date", ctxRunDate)
	}

	if ctxVolume, ok := ctx.Value(volumeKeyId).(string); ok && ctxVolume != "" {
		result = result.WithField("volume", ctxVolume)
	}

	if ctxContainerId, ok := ctx.Value(containerIdKeyId).(string); ok && ctxContainerId != "" {
		result = result.WithField("container_id", ctxContainerId)
	}

	if ctxRequestId, ok := ctx.Value(requestIdKeyId).(string); ok && ctxRequestId != "" {
		result = result.WithField("request_id", ctxRequestId)
	}

	return result
}
