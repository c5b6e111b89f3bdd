// Package txn runs multi-document work inside a MongoDB transaction when
// the server supports one, and falls back to running the function directly
// when it does not (standalone servers have no transaction support).
//
// Callers that need atomicity across collections use Run and, when it
// reports the fallback path, perform their own compensating cleanup on
// partial failure.
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// Run executes fn, inside a transaction if the server supports it.
//
// The returned bool reports whether a transaction was actually used: true
// means fn ran atomically; false means the server rejected transactions and
// fn was re-run directly, so the caller is responsible for compensating on
// partial failure.
func Run(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) (bool, error) {
	session, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return false, fn(ctx)
		}
		return false, err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		return false, fn(ctx)
	}
	return true, err
}

// IsNotSupported reports whether err indicates the server cannot run
// transactions (standalone deployment, old server, or session rejection),
// as opposed to the transaction body failing.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		switch cmdErr.Code {
		case 20, 51, 263:
			return true
		}
		return false
	}

	msg := strings.ToLower(err.Error())
	pairs := [][2]string{
		{"transaction", "replica set"},
		{"session", "not supported"},
		{"transaction", "session"},
		{"illegal operation", "transaction"},
	}
	for _, p := range pairs {
		if strings.Contains(msg, p[0]) && strings.Contains(msg, p[1]) {
			return true
		}
	}
	return false
}
