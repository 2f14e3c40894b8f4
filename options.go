package indexedstore

import (
	"context"
	"errors"
	"log/slog"
)

// Option is the interface for the options of the stores.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) {
	f(o)
}

// WithImmutableIndexKeys sets whether index-key values are assumed to never change after a record
// is stored, except through the store's own operations. The default is true.
//
// In immutable mode, Alter resynchronizes the indices by removing and re-adding the record, and
// AlterInPlace and AlterSingleField never touch the indices.
// In mutable mode, Alter swaps the stored pointer without touching the indices, and
// AlterInPlace and AlterSingleField resynchronize the buckets of changed index-key fields.
// SetField resynchronizes in both modes.
func WithImmutableIndexKeys(immutable bool) Option {
	return optionFunc(func(o *options) {
		o.immutable = immutable
	})
}

// WithMutableIndexKeys is a shorthand for WithImmutableIndexKeys(false).
func WithMutableIndexKeys() Option {
	return WithImmutableIndexKeys(false)
}

// WithErrorHandler sets the function that receives recovered misuses as *OperationError.
// The default handler logs them with slog.Default at the warning level.
func WithErrorHandler(onError func(error)) Option {
	return optionFunc(func(o *options) {
		o.onError = onError
	})
}

// WithLogger makes the store log recovered misuses to the logger at the warning level.
func WithLogger(logger *slog.Logger) Option {
	return WithErrorHandler(func(err error) {
		logError(logger, err)
	})
}

type options struct {
	immutable bool
	onError   func(error)
}

func defaultOptions() options {
	return options{
		immutable: true,
		onError: func(err error) {
			logError(slog.Default(), err)
		},
	}
}

func logError(logger *slog.Logger, err error) {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		logger.LogAttrs(context.Background(), slog.LevelWarn, "indexedstore: recovered from misuse",
			slog.String("op", opErr.Op),
			slog.Any("primary_key", opErr.PrimaryKey),
			slog.Any("error", opErr.Err),
		)
		return
	}
	logger.LogAttrs(context.Background(), slog.LevelWarn, "indexedstore: recovered from misuse", slog.Any("error", err))
}
