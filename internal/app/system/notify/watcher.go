package notify

import (
	"context"
	"time"

	"github.com/dalemusser/minutehub/internal/app/system/txn"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Watcher tails MongoDB change streams on the signal-bearing collections
// and republishes them to the hub, so writes by other processes reach
// this process's subscribers.
//
// Change streams need a replica set. On a standalone server Watch fails
// with the same class of errors as transactions; the watcher then stops
// quietly and the hub carries in-process signals only.
type Watcher struct {
	db  *mongo.Database
	hub *Hub
	log *zap.Logger
}

// NewWatcher returns a watcher bound to the hub.
func NewWatcher(db *mongo.Database, hub *Hub, log *zap.Logger) *Watcher {
	return &Watcher{db: db, hub: hub, log: log}
}

// retryDelay between watch attempts after a stream error.
const retryDelay = 5 * time.Second

// Run watches all three collections until ctx is cancelled. It returns
// immediately (nil) when the server does not support change streams.
func (w *Watcher) Run(ctx context.Context) error {
	for _, set := range []string{SetGroups, SetMemberships, SetInvitations} {
		supported, err := w.watchLoop(ctx, set)
		if err != nil {
			return err
		}
		if !supported {
			w.log.Info("change streams unsupported; cross-process signals disabled")
			return nil
		}
	}
	<-ctx.Done()
	return nil
}

// watchLoop starts one collection's stream in a goroutine. The first
// Watch call happens synchronously so support can be probed once.
func (w *Watcher) watchLoop(ctx context.Context, set string) (bool, error) {
	stream, err := w.openStream(ctx, set)
	if err != nil {
		if txn.IsNotSupported(err) {
			return false, nil
		}
		return false, err
	}

	go func() {
		for {
			w.drain(ctx, set, stream)
			// Each stream is closed exactly once, right after its drain.
			stream.Close(context.Background())
			if ctx.Err() != nil {
				return
			}
			// Stream broke; reopen after a pause, retrying until one opens.
			for {
				select {
				case <-ctx.Done():
					return
				case <-time.After(retryDelay):
				}
				next, err := w.openStream(ctx, set)
				if err != nil {
					w.log.Warn("reopen change stream failed",
						zap.String("collection", set), zap.Error(err))
					continue
				}
				stream = next
				break
			}
		}
	}()
	return true, nil
}

func (w *Watcher) openStream(ctx context.Context, set string) (*mongo.ChangeStream, error) {
	return w.db.Collection(set).Watch(ctx, mongo.Pipeline{},
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
}

// changeEvent is the slice of a change-stream document we care about.
type changeEvent struct {
	FullDocument struct {
		ID      primitive.ObjectID `bson:"_id"`
		GroupID primitive.ObjectID `bson:"group_id"`
		Email   string             `bson:"email"`
	} `bson:"fullDocument"`
	DocumentKey struct {
		ID primitive.ObjectID `bson:"_id"`
	} `bson:"documentKey"`
	OperationType string `bson:"operationType"`
}

func (w *Watcher) drain(ctx context.Context, set string, stream *mongo.ChangeStream) {
	for stream.Next(ctx) {
		var ev changeEvent
		if err := bson.Unmarshal(stream.Current, &ev); err != nil {
			w.log.Warn("decode change event failed",
				zap.String("collection", set), zap.Error(err))
			continue
		}
		sig := Signal{Set: set, Email: ev.FullDocument.Email}
		switch set {
		case SetGroups:
			// For group events the group id IS the document id; deletes
			// have no fullDocument.
			sig.GroupID = ev.FullDocument.ID
			if sig.GroupID.IsZero() {
				sig.GroupID = ev.DocumentKey.ID
			}
		default:
			// Deletes lose the scope fields; publish unscoped so every
			// subscriber re-syncs.
			sig.GroupID = ev.FullDocument.GroupID
		}
		w.hub.Publish(sig)
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		w.log.Warn("change stream ended",
			zap.String("collection", set), zap.Error(err))
	}
}
