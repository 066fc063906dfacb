package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/pdemaers/player-wellness-dashboard/internal/domain/model"
)

// Collection names, matching the wellness platform's database layout.
const (
	rosterCollection   = "roster"
	sessionsCollection = "sessions"
	rpeCollection      = "player_rpe"
)

const defaultQueryTimeout = 10 * time.Second

// MongoStore implements Store over the platform's MongoDB database.
type MongoStore struct {
	client       *mongo.Client
	database     string
	queryTimeout time.Duration
}

// MongoOption applies a configuration option to the MongoStore.
type MongoOption func(*MongoStore)

// WithQueryTimeout bounds each collection read.
func WithQueryTimeout(timeout time.Duration) MongoOption {
	return func(s *MongoStore) {
		if timeout > 0 {
			s.queryTimeout = timeout
		}
	}
}

// NewMongoStore connects to the database and verifies it is reachable.
func NewMongoStore(ctx context.Context, uri, database string, opts ...MongoOption) (*MongoStore, error) {
	s := &MongoStore{
		database:     database,
		queryTimeout: defaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}
	s.client = client
	return s, nil
}

// Close disconnects from the database.
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect failed: %w", err)
	}
	return nil
}

func (s *MongoStore) collection(name string) *mongo.Collection {
	return s.client.Database(s.database).Collection(name)
}

// Roster returns all players across teams.
func (s *MongoStore) Roster(ctx context.Context) ([]model.Player, error) {
	docs, err := s.find(ctx, rosterCollection, bson.D{})
	if err != nil {
		return nil, err
	}
	players := make([]model.Player, 0, len(docs))
	for _, doc := range docs {
		players = append(players, model.Player{
			PlayerID:  stringField(doc, "player_id"),
			FirstName: stringField(doc, "player_first_name"),
			LastName:  stringField(doc, "player_last_name"),
			Team:      stringField(doc, "team"),
		})
	}
	return players, nil
}

// Sessions returns the team's session records.
func (s *MongoStore) Sessions(ctx context.Context, team string) ([]model.Session, error) {
	filter := bson.D{}
	if team != "" {
		filter = bson.D{{Key: "team", Value: team}}
	}
	docs, err := s.find(ctx, sessionsCollection, filter)
	if err != nil {
		return nil, err
	}
	sessions := make([]model.Session, 0, len(docs))
	for _, doc := range docs {
		sessions = append(sessions, model.Session{
			SessionID:       stringField(doc, "session_id"),
			Team:            stringField(doc, "team"),
			Date:            timeField(doc, "date"),
			Type:            model.SessionType(stringField(doc, "session_type")),
			DurationMinutes: intField(doc, "duration"),
			WeekNumber:      intField(doc, "weeknumber"),
		})
	}
	return sessions, nil
}

// Entries returns all RPE registrations with their original field typing
// preserved, so the normalizer can classify malformed documents instead
// of the driver rejecting them.
func (s *MongoStore) Entries(ctx context.Context) ([]model.RawEntry, error) {
	docs, err := s.find(ctx, rpeCollection, bson.D{})
	if err != nil {
		return nil, err
	}
	entries := make([]model.RawEntry, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, model.RawEntry{
			EntryID:   entryID(doc),
			PlayerID:  plain(doc["player_id"]),
			SessionID: plain(doc["session_id"]),
			Date:      plain(doc["date"]),
			Score:     plain(doc["rpe_score"]),
			Minutes:   plain(doc["training_minutes"]),
			Timestamp: plain(doc["timestamp"]),
		})
	}
	return entries, nil
}

func (s *MongoStore) find(ctx context.Context, collection string, filter bson.D) ([]bson.M, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	cur, err := s.collection(collection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, collection, err)
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetch, collection, err)
	}
	return docs, nil
}

// entryID renders a stable identifier for an RPE document.
func entryID(doc bson.M) string {
	switch id := doc["_id"].(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprintf("%v", id)
	}
}

// plain converts driver-specific BSON values to plain Go ones so the
// domain never sees primitive types.
func plain(v any) any {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time().UTC()
	case primitive.ObjectID:
		return t.Hex()
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	default:
		return v
	}
}

func stringField(doc bson.M, key string) string {
	switch t := doc[key].(type) {
	case string:
		return t
	case int32:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	case float64:
		return fmt.Sprintf("%d", int64(t))
	default:
		return ""
	}
}

func intField(doc bson.M, key string) int {
	switch t := doc[key].(type) {
	case int32:
		return int(t)
	case int64:
		return int(t)
	case float64:
		return int(t)
	case int:
		return t
	default:
		return 0
	}
}

func timeField(doc bson.M, key string) time.Time {
	if t, ok := doc[key].(primitive.DateTime); ok {
		return t.Time().UTC()
	}
	if t, ok := doc[key].(time.Time); ok {
		return t.UTC()
	}
	return time.Time{}
}
