package main

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Consumer interface {
	Consume(ctx context.Context) error
}

// popRetryDelay is the pause after a failed pop.
const popRetryDelay = time.Second

type mirrorConsumer struct {
	logger     *zap.Logger
	queue      Queuer
	target     Collection
	retryDelay time.Duration
}

// NewMirrorConsumer provides a consumer replaying the queued changes on target.
func NewMirrorConsumer(logger *zap.Logger, q Queuer, target Collection) Consumer {
	return &mirrorConsumer{logger, q, target, popRetryDelay}
}

// Consume runs until ctx is done. A change that cannot be replayed is
// logged and skipped.
func (mc *mirrorConsumer) Consume(ctx context.Context) error {
	for {
		change, err := mc.queue.Pop(ctx)
		if err != nil && ctx.Err() != nil {
			mc.logger.Info("consumer: queue pop call: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		}

		if err != nil {
			mc.logger.Error("consumer: error on queue pop call", zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(mc.retryDelay):
			}
			continue
		}

		if err = change.ApplyTo(ctx, mc.target); err != nil {
			mc.logger.Error("consumer: failed to replay change", zap.String("change.kind", string(change.Kind)), zap.Error(err))
			continue
		}
		mc.logger.Debug("consumer: change replayed", zap.String("change.kind", string(change.Kind)))
	}
}
