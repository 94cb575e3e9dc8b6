package chatsession

import (
	"context"
	"errors"
	"time"

	"homevia/apperr"
	"homevia/db"
	"homevia/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore backs the manager with the chatsessions collection. The
// collection carries a unique index on meetingid (see db.EnsureIndexes).
type MongoStore struct{}

func NewMongoStore() *MongoStore {
	return &MongoStore{}
}

// UpsertForMeeting inserts the session unless one already exists for the
// meeting, in which case the existing document wins. $setOnInsert plus
// the unique meetingid index makes this a single atomic step.
func (s *MongoStore) UpsertForMeeting(ctx context.Context, session models.ChatSession) (models.ChatSession, error) {
	filter := bson.M{"meetingid": session.MeetingID}
	update := bson.M{"$setOnInsert": session}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out models.ChatSession
	if err := db.ChatSessionsCollection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return models.ChatSession{}, err
	}
	return out, nil
}

func (s *MongoStore) FindByRoomToken(ctx context.Context, token string) (models.ChatSession, error) {
	var session models.ChatSession
	err := db.ChatSessionsCollection.FindOne(ctx, bson.M{"room_token": token}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ChatSession{}, apperr.NotFoundf("chat session %s", token)
	}
	return session, err
}

func (s *MongoStore) FindByMeetingID(ctx context.Context, meetingID string) (models.ChatSession, error) {
	var session models.ChatSession
	err := db.ChatSessionsCollection.FindOne(ctx, bson.M{"meetingid": meetingID}).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ChatSession{}, apperr.NotFoundf("chat session for meeting %s", meetingID)
	}
	return session, err
}

func (s *MongoStore) MarkDestroyed(ctx context.Context, token string, at time.Time) error {
	res, err := db.ChatSessionsCollection.UpdateOne(ctx,
		bson.M{"room_token": token},
		bson.M{"$set": bson.M{"status": models.ChatDestroyed, "destroyed_at": at}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFoundf("chat session %s", token)
	}
	return nil
}
