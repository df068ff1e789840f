// internal/sink/mongostore/store.go
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/tamzrod/fatigue-relay/internal/status"
)

// Config locates the history collection.
type Config struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// DefaultCollection holds one document per delivered snapshot.
const DefaultCollection = "fatigue_records"

// record is the stored document shape.
type record struct {
	DeviceID     string    `bson:"device_id"`
	Timestamp    time.Time `bson:"timestamp"` // BSON dates keep milliseconds only
	TimestampKey string    `bson:"timestamp_key"`
	StatusCode   int       `bson:"status_code"`
	StatusText   string    `bson:"status_text"`
	IsAlert      bool      `bson:"is_alert"`
	BlinkCount   *int      `bson:"blink_count,omitempty"`
	YawnCount    *int      `bson:"yawn_count,omitempty"`
	HeadNodCount *int      `bson:"head_nod_count,omitempty"`
	ReceivedAt   time.Time `bson:"received_at"`
}

// collection is the subset of *mongo.Collection the sink calls.
type collection interface {
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...options.Lister[options.ReplaceOptions]) (*mongo.UpdateResult, error)
}

// Sink keeps the delivered history in MongoDB.
// Documents are upserted by (device_id, timestamp_key), so a re-delivered
// snapshot does not create a second record. timestamp_key is the full
// precision UTC timestamp text; snapshots apart by less than a millisecond
// stay distinct.
type Sink struct {
	client *mongo.Client
	coll   collection
	now    func() time.Time
}

// Connect opens a client, pings the primary and ensures the unique index.
func Connect(ctx context.Context, cfg Config) (*Sink, error) {
	if cfg.URI == "" {
		return nil, errors.New("sink mongo: uri required")
	}
	if cfg.Database == "" {
		return nil, errors.New("sink mongo: database required")
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.URI).SetTimeout(cfg.Timeout))
	if err != nil {
		return nil, fmt.Errorf("sink mongo: connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("sink mongo: ping: %w", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(pingCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "device_id", Value: 1}, {Key: "timestamp_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("sink mongo: index: %w", err)
	}

	return &Sink{client: client, coll: coll, now: time.Now}, nil
}

func (s *Sink) Name() string { return "mongo" }

func (s *Sink) Deliver(ctx context.Context, snap status.Snapshot) error {
	rec := toRecord(snap, s.now())
	filter := bson.D{
		{Key: "device_id", Value: rec.DeviceID},
		{Key: "timestamp_key", Value: rec.TimestampKey},
	}

	if _, err := s.coll.ReplaceOne(ctx, filter, rec, options.Replace().SetUpsert(true)); err != nil {
		return fmt.Errorf("sink mongo: upsert %s@%s: %w", rec.DeviceID, snap.Timestamp, err)
	}
	return nil
}

func (s *Sink) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func toRecord(snap status.Snapshot, receivedAt time.Time) record {
	return record{
		DeviceID:     snap.DeviceID,
		Timestamp:    snap.Timestamp.UTC(),
		TimestampKey: snap.Timestamp.UTC().Format(time.RFC3339Nano),
		StatusCode:   int(snap.StatusCode),
		StatusText:   snap.StatusText,
		IsAlert:      snap.IsAlert,
		BlinkCount:   snap.BlinkCount,
		YawnCount:    snap.YawnCount,
		HeadNodCount: snap.HeadNodCount,
		ReceivedAt:   receivedAt.UTC(),
	}
}
