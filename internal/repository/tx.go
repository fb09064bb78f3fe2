package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// TxRunner runs a unit of work that spans several collections.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type mongoTxRunner struct {
	client       *mongo.Client
	transactions bool
	maxElapsed   time.Duration
	log          *zap.Logger
}

// NewMongoTxRunner returns a runner backed by client sessions. With
// transactions disabled (standalone servers) fn runs without a session and
// is retried with exponential backoff, so it must be idempotent and remove
// the parent document last.
func NewMongoTxRunner(client *mongo.Client, transactions bool, log *zap.Logger) TxRunner {
	return &mongoTxRunner{
		client:       client,
		transactions: transactions,
		maxElapsed:   30 * time.Second,
		log:          log,
	}
}

func (r *mongoTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !r.transactions {
		return r.withRetry(ctx, fn)
	}
	return r.client.UseSession(ctx, func(sc mongo.SessionContext) error {
		_, err := sc.WithTransaction(sc, func(txCtx mongo.SessionContext) (interface{}, error) {
			return nil, fn(txCtx)
		})
		return err
	})
}

func (r *mongoTxRunner) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = r.maxElapsed
	attempt := 0
	return backoff.Retry(func() error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !transient(err) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		r.log.Warn("unit of work failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		return err
	}, backoff.WithContext(b, ctx))
}

// transient reports whether the driver marked err as worth retrying.
func transient(err error) bool {
	if mongo.IsNetworkError(err) {
		return true
	}
	var labeled mongo.LabeledError
	if errors.As(err, &labeled) {
		return labeled.HasErrorLabel("TransientTransactionError") ||
			labeled.HasErrorLabel("RetryableWriteError")
	}
	return false
}
