// Package mongostore keeps one topic snapshot document per client#period key
// and a flat messages collection.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"topic-insights-go/internal/store"
	"topic-insights-go/internal/types"
)

type snapshotDoc struct {
	Key            string `bson:"_id"`
	types.TopicSet `bson:",inline"`
	ExpiresAt      time.Time `bson:"expiresAt"`
}

type messageDoc struct {
	ClientID      string `bson:"clientId"`
	types.Message `bson:",inline"`
}

type Store struct {
	snapshots *mongo.Collection
	messages  *mongo.Collection
	now       func() time.Time
}

// New binds the store to db and makes sure its indexes exist. Snapshots
// carry a TTL index so Mongo drops them after the retention period.
func New(ctx context.Context, db *mongo.Database) (*Store, error) {
	s := &Store{
		snapshots: db.Collection("topic_snapshots"),
		messages:  db.Collection("messages"),
		now:       time.Now,
	}

	if _, err := s.snapshots.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}); err != nil {
		return nil, fmt.Errorf("create snapshot ttl index: %w", err)
	}
	if _, err := s.messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "sessionId", Value: 1}, {Key: "timestamp", Value: 1}}},
	}); err != nil {
		return nil, fmt.Errorf("create message indexes: %w", err)
	}
	return s, nil
}

// Connect dials uri and opens the store on database name.
func Connect(ctx context.Context, uri, name string) (*mongo.Client, *Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	s, err := New(ctx, client.Database(name))
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, nil, err
	}
	return client, s, nil
}

// ReplaceTopics overwrites the snapshot document of client#period.
func (s *Store) ReplaceTopics(ctx context.Context, clientID string, period types.PeriodType, bounds types.PeriodBounds, topics []types.Topic) error {
	now := s.now().UTC()
	stored := make([]types.Topic, len(topics))
	for i, t := range topics {
		if t.TopicID == "" {
			t.TopicID = store.TopicID(t.Rank)
		}
		stored[i] = t
	}

	doc := snapshotDoc{
		Key: period.Key(clientID),
		TopicSet: types.TopicSet{
			ClientID:    clientID,
			Period:      period,
			Bounds:      bounds,
			LastUpdated: now,
			Topics:      stored,
		},
		ExpiresAt: now.Add(store.Retention),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.snapshots.ReplaceOne(ctx, bson.M{"_id": doc.Key}, doc, opts); err != nil {
		return fmt.Errorf("replace snapshot %s: %w", doc.Key, err)
	}
	return nil
}

func (s *Store) GetTopics(ctx context.Context, clientID string, period types.PeriodType) (types.TopicSet, error) {
	var doc snapshotDoc
	err := s.snapshots.FindOne(ctx, bson.M{
		"_id":       period.Key(clientID),
		"expiresAt": bson.M{"$gt": s.now().UTC()},
	}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return types.TopicSet{}, store.ErrNotFound
	}
	if err != nil {
		return types.TopicSet{}, fmt.Errorf("find snapshot: %w", err)
	}
	return doc.TopicSet, nil
}

func (s *Store) SaveMessages(ctx context.Context, clientID string, messages []types.Message) error {
	if len(messages) == 0 {
		return nil
	}
	docs := make([]any, len(messages))
	for i, m := range messages {
		if m.Timestamp.IsZero() {
			m.Timestamp = s.now()
		}
		m.Timestamp = m.Timestamp.UTC()
		docs[i] = messageDoc{ClientID: clientID, Message: m}
	}
	if _, err := s.messages.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert messages: %w", err)
	}
	return nil
}

// SessionIDs lists the client's sessions active since the given time, most
// recent first.
func (s *Store) SessionIDs(ctx context.Context, clientID string, since time.Time) ([]string, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"clientId": clientID, "timestamp": bson.M{"$gte": since.UTC()}}}},
		{{Key: "$group", Value: bson.M{"_id": "$sessionId", "lastSeen": bson.M{"$max": "$timestamp"}}}},
		{{Key: "$sort", Value: bson.D{{Key: "lastSeen", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	cur, err := s.messages.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer cur.Close(ctx)

	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	return ids, nil
}

func (s *Store) SessionMessages(ctx context.Context, sessionID string) ([]types.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.messages.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch session %s: %w", sessionID, err)
	}
	defer cur.Close(ctx)

	var docs []messageDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", sessionID, err)
	}
	out := make([]types.Message, len(docs))
	for i, d := range docs {
		out[i] = d.Message
	}
	return out, nil
}
