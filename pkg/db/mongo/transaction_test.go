package mongo

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"

	apperrors "stablebook/pkg/errors"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"lock contention", fmt.Errorf("acquire: %w", ErrLockContention), true},
		{"deadline", context.DeadlineExceeded, true},
		{"write conflict code", mongo.CommandError{Code: codeWriteConflict, Message: "WriteConflict"}, true},
		{"transient label", mongo.CommandError{Code: 251, Labels: []string{labelTransientTransaction}}, true},
		{"unknown commit", mongo.CommandError{Code: 50, Labels: []string{labelUnknownCommitResult}}, true},
		{"other server error", mongo.CommandError{Code: 2, Message: "BadValue"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyTransactionError(t *testing.T) {
	ctx := context.Background()

	if err := ClassifyTransactionError(ctx, nil); err != nil {
		t.Errorf("nil should stay nil, got %v", err)
	}

	rule := apperrors.BusinessRule("overlap", "pair 0: taken")
	if got := ClassifyTransactionError(ctx, fmt.Errorf("wrapped: %w", rule)); got != rule {
		t.Errorf("AppError should pass through, got %v", got)
	}

	conflict := mongo.CommandError{Code: codeWriteConflict}
	if got := ClassifyTransactionError(ctx, conflict); !apperrors.HasCode(got, apperrors.CodeTransient) {
		t.Errorf("write conflict should be transient, got %v", got)
	}

	expired, cancel := context.WithCancel(ctx)
	cancel()
	if got := ClassifyTransactionError(expired, errors.New("socket closed")); !apperrors.HasCode(got, apperrors.CodeTransient) {
		t.Errorf("error after context end should be transient, got %v", got)
	}

	if got := ClassifyTransactionError(ctx, errors.New("corrupt")); !apperrors.HasCode(got, apperrors.CodeInternal) {
		t.Errorf("unknown error should be internal, got %v", got)
	}
}
