// Package txn runs multi-document writes inside a MongoDB transaction.
//
// Standalone servers (typical in local development) do not support
// transactions. When the server reports that, Run logs a warning and executes
// the same function without a transaction. Callers keep their write sequences
// ordered so a partial run leaves no dangling references.
package txn

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/taskhub/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Runner executes fn as one unit of work.
type Runner interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Mongo is a Runner backed by a MongoDB client session.
type Mongo struct {
	db  *mongo.Database
	log *zap.Logger
}

// New returns a Runner for db.
func New(db *mongo.Database, logger *zap.Logger) *Mongo {
	return &Mongo{db: db, log: logger}
}

func (m *Mongo) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return Run(ctx, m.db, m.log, fn)
}

// Direct runs fn with no transaction. Used where the backing store has no
// transaction support at all (the in-memory test store).
type Direct struct{}

func (Direct) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Run executes fn in a transaction on db's client, falling back to a plain
// call when the deployment cannot run transactions.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		if IsNotSupported(err) {
			log.Warn("sessions not supported; running without transaction", zap.Error(err))
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err == nil {
		return nil
	}
	if apperr.KindOf(err) == apperr.KindInternal && IsNotSupported(err) {
		log.Warn("transactions not supported; running without transaction", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// Server error codes that mean "this deployment cannot run transactions".
var notSupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation
	51:  true, // IllegalOperation (legacy)
	263: true, // OperationNotSupportedInTransaction
}

var notSupportedKeywords = []string{
	"transaction",
	"replica set",
	"session",
	"not supported",
	"illegal operation",
}

// IsNotSupported reports whether err indicates missing transaction support.
// Known command error codes match directly; otherwise at least two of the
// keywords must appear in the message.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) {
		if notSupportedCodes[ce.Code] {
			return true
		}
	}
	msg := strings.ToLower(err.Error())
	hits := 0
	for _, kw := range notSupportedKeywords {
		if strings.Contains(msg, kw) {
			hits++
		}
	}
	return hits >= 2
}
