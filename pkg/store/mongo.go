package store

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/sugarcheck/pkg/errors"
	"github.com/matzehuels/sugarcheck/pkg/pipeline"
)

// Mongo defaults.
const (
	DefaultDatabase   = "sugarcheck"
	DefaultCollection = "reports"
	connectTimeout    = 10 * time.Second
)

// reportDoc is the stored form of a report. The report itself is kept as
// JSON so that its shape follows the API and not BSON tags.
type reportDoc struct {
	ID        string    `bson:"_id"`
	Structure string    `bson:"structure"`
	Hash      string    `bson:"hash"`
	CreatedAt time.Time `bson:"created_at"`
	Sugars    int       `bson:"sugars"`
	Report    []byte    `bson:"report"`
}

// MongoStore stores reports in a MongoDB collection.
type MongoStore struct {
	client *mongo.Client // nil when built from a collection
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and uses database db (DefaultDatabase when
// empty). The connection is verified with a ping.
func NewMongoStore(ctx context.Context, uri, db string) (*MongoStore, error) {
	if err := errors.ValidateURL(uri, "mongodb", "mongodb+srv"); err != nil {
		return nil, err
	}
	if db == "" {
		db = DefaultDatabase
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := &MongoStore{client: client, coll: client.Database(db).Collection(DefaultCollection)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// NewMongoStoreFromCollection wraps an existing collection. Close does not
// disconnect its client.
func NewMongoStoreFromCollection(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Put stores rep, replacing any report with the same ID.
func (s *MongoStore) Put(ctx context.Context, rep *pipeline.Report) (string, error) {
	assignID(rep)
	data, err := json.Marshal(rep)
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	doc := reportDoc{
		ID:        rep.ID,
		Structure: rep.Structure,
		Hash:      rep.Hash,
		CreatedAt: rep.CreatedAt,
		Sugars:    len(rep.Sugars),
		Report:    data,
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": rep.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return "", fmt.Errorf("store report %s: %w", rep.ID, err)
	}
	return rep.ID, nil
}

// Get returns the report stored under id.
func (s *MongoStore) Get(ctx context.Context, id string) (*pipeline.Report, error) {
	var doc reportDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("load report %s: %w", id, err)
	}
	var rep pipeline.Report
	if err := json.Unmarshal(doc.Report, &rep); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &rep, nil
}

// List returns up to limit summaries, newest first.
func (s *MongoStore) List(ctx context.Context, limit int) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limitOrDefault(limit))).
		SetProjection(bson.M{"report": 0})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	out := []Summary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return out, nil
}

// Delete removes the report stored under id.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete report %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}

// Close disconnects the client opened by NewMongoStore.
func (s *MongoStore) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return s.client.Disconnect(ctx)
}
