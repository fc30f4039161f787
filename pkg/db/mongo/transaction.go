package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	apperrors "stablebook/pkg/errors"
)

const (
	labelTransientTransaction = "TransientTransactionError"
	labelUnknownCommitResult  = "UnknownTransactionCommitResult"
	codeWriteConflict         = 112
)

// ErrLockContention is returned by lock writers that lost a race outside the
// server's own write-conflict detection. It is retried like a write conflict.
var ErrLockContention = errors.New("lock contention")

// TransactionFunc runs inside a transaction. The context it receives must be
// used for every store call that belongs to the transaction.
type TransactionFunc func(ctx context.Context) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type TransactionOptions struct {
	Timeout       time.Duration
	MaxCommitTime time.Duration
}

type mongoTransactionManager struct {
	client *mongo.Client
	opts   TransactionOptions
}

func NewTransactionManager(client *mongo.Client, opts TransactionOptions) TransactionManager {
	return &mongoTransactionManager{
		client: client,
		opts:   opts,
	}
}

// ExecuteTransaction runs fn with snapshot reads and majority writes. The
// driver retries fn on transient labels until the deadline; whatever is left
// after that is reported as a retryable TRANSIENT_FAILURE.
func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	if m.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.opts.Timeout)
		defer cancel()
	}

	session, err := m.client.StartSession()
	if err != nil {
		return apperrors.Transient("Could not start a store session, please retry", err)
	}
	defer session.EndSession(context.Background())

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	if m.opts.MaxCommitTime > 0 {
		maxCommit := m.opts.MaxCommitTime
		txnOpts.SetMaxCommitTime(&maxCommit)
	}

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	}, txnOpts)

	return ClassifyTransactionError(ctx, err)
}

// ClassifyTransactionError maps the outcome of a transaction to the error
// set returned to callers. AppErrors from the callback pass through.
func ClassifyTransactionError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if IsTransient(err) || ctx.Err() != nil {
		return apperrors.Transient("The reservation store is busy, please retry", err)
	}

	return apperrors.Internal("Transaction failed", fmt.Errorf("transaction failed: %w", err))
}

// IsTransient reports errors worth retrying: write conflicts, transient
// transaction labels, unknown commit results, timeouts and lock contention.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrLockContention) ||
		errors.Is(err, context.DeadlineExceeded) ||
		mongo.IsTimeout(err) {
		return true
	}

	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		return serverErr.HasErrorLabel(labelTransientTransaction) ||
			serverErr.HasErrorLabel(labelUnknownCommitResult) ||
			serverErr.HasErrorCode(codeWriteConflict)
	}
	return false
}
