package runstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists runs in a MongoDB collection, for the HTTP API and
// any fleet of batch workers sharing run history across instances.
//
// The report and config are stored JSON-encoded in a single field rather
// than mapped to BSON field-by-field: report.Report carries a
// map[int]RuleCounts, and round-tripping a non-string-keyed map through
// the driver's default struct codec is more trouble than it's worth for
// a field nothing ever queries into.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// runDoc is the Mongo document shape.
type runDoc struct {
	ID         string `bson:"_id"`
	InputPath  string `bson:"input_path"`
	InputHash  string `bson:"input_hash"`
	StartedAt  int64  `bson:"started_at_unix_ms"`
	DurationMS int64  `bson:"duration_ms"`
	Status     string `bson:"status"`
	Error      string `bson:"error,omitempty"`
	ConfigJSON []byte `bson:"config_json"`
	ReportJSON []byte `bson:"report_json"`
}

// NewMongoStore connects to uri and targets database/collection
// "structuralign"/"runs", verifying the connection with a Ping.
func NewMongoStore(ctx context.Context, uri string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("runstore: connect to %s: %w", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("runstore: ping %s: %w", uri, err)
	}
	coll := client.Database("structuralign").Collection("runs")
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Save(ctx context.Context, run *Run) error {
	doc, err := toDoc(run)
	if err != nil {
		return fmt.Errorf("runstore: encode run %s: %w", run.ID, err)
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": run.ID}, doc, opts); err != nil {
		return fmt.Errorf("runstore: save run %s: %w", run.ID, err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Run, error) {
	var doc runDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("runstore: get run %s: %w", id, err)
	}
	return fromDoc(doc)
}

func (s *MongoStore) List(ctx context.Context, limit int) ([]*Run, error) {
	opts := options.Find().SetSort(bson.D{{Key: "started_at_unix_ms", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("runstore: list runs: %w", err)
	}
	defer cursor.Close(ctx)

	var runs []*Run
	for cursor.Next(ctx) {
		var doc runDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("runstore: decode run: %w", err)
		}
		run, err := fromDoc(doc)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, cursor.Err()
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func toDoc(run *Run) (runDoc, error) {
	cfgJSON, err := json.Marshal(run.Config)
	if err != nil {
		return runDoc{}, err
	}
	repJSON, err := json.Marshal(run.Report)
	if err != nil {
		return runDoc{}, err
	}
	return runDoc{
		ID:         run.ID,
		InputPath:  run.InputPath,
		InputHash:  run.InputHash,
		StartedAt:  run.StartedAt.UnixMilli(),
		DurationMS: run.Duration.Milliseconds(),
		Status:     string(run.Status),
		Error:      run.Error,
		ConfigJSON: cfgJSON,
		ReportJSON: repJSON,
	}, nil
}

func fromDoc(doc runDoc) (*Run, error) {
	run := &Run{
		ID:        doc.ID,
		InputPath: doc.InputPath,
		InputHash: doc.InputHash,
		StartedAt: time.UnixMilli(doc.StartedAt),
		Duration:  time.Duration(doc.DurationMS) * time.Millisecond,
		Status:    Status(doc.Status),
		Error:     doc.Error,
	}
	if err := json.Unmarshal(doc.ConfigJSON, &run.Config); err != nil {
		return nil, fmt.Errorf("runstore: decode config for run %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal(doc.ReportJSON, &run.Report); err != nil {
		return nil, fmt.Errorf("runstore: decode report for run %s: %w", doc.ID, err)
	}
	return run, nil
}

var _ Store = (*MongoStore)(nil)
