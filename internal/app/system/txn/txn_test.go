package txn

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsNotSupported(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("task not found"), false},
		{"code 20", mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}, true},
		{"code 51", mongo.CommandError{Code: 51, Message: "Illegal operation"}, true},
		{"code 263", mongo.CommandError{Code: 263, Message: "Cannot run in a multi-document transaction"}, true},
		{"unrelated code", mongo.CommandError{Code: 11000, Message: "E11000 duplicate key"}, false},
		{"transaction and replica set", errors.New("transaction failed: not a replica set member"), true},
		{"session and not supported", errors.New("session operations are not supported here"), true},
		{"single keyword", errors.New("transaction aborted"), false},
		{"mixed case keywords", errors.New("Transaction Session error"), true},
		{"wrapped command error", wrap(mongo.CommandError{Code: 20}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotSupported(tt.err); got != tt.want {
				t.Errorf("IsNotSupported(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDirect_RunsOnce(t *testing.T) {
	calls := 0
	errBoom := errors.New("boom")

	err := Direct{}.Run(context.Background(), func(ctx context.Context) error {
		calls++
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Errorf("Run error = %v, want %v", err, errBoom)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

type wrapped struct{ err error }

func (w wrapped) Error() string { return "start session: " + w.err.Error() }
func (w wrapped) Unwrap() error { return w.err }

func wrap(err error) error { return wrapped{err: err} }
