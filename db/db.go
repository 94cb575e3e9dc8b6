package db

import (
	"context"
	"log"
	"time"

	"homevia/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection         *mongo.Collection
	PropertiesCollection   *mongo.Collection
	AmenitiesCollection    *mongo.Collection
	MeetingsCollection     *mongo.Collection
	ChatSessionsCollection *mongo.Collection
	MessagesCollection     *mongo.Collection
	BookingsCollection     *mongo.Collection
	ReviewsCollection      *mongo.Collection
	Client                 *mongo.Client
)

// Init connects to MongoDB and binds the collection handles.
func Init(cfg config.Config) {
	clientOptions := options.Client().ApplyURI(cfg.MongoURI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var err error
	Client, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	database := Client.Database(cfg.MongoDB)
	UserCollection = database.Collection("users")
	PropertiesCollection = database.Collection("properties")
	AmenitiesCollection = database.Collection("amenities")
	MeetingsCollection = database.Collection("meetings")
	ChatSessionsCollection = database.Collection("chatsessions")
	MessagesCollection = database.Collection("messages")
	BookingsCollection = database.Collection("bookings")
	ReviewsCollection = database.Collection("reviews")

	if err := EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}
}

// EnsureIndexes creates the uniqueness constraints the services rely on.
// The unique meetingid index on chatsessions is what makes session
// creation race-free: two concurrent upserts for the same meeting resolve
// to a single document.
func EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	_, err := UserCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
	})
	if err != nil {
		return err
	}

	_, err = ChatSessionsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "meetingid", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "room_token", Value: 1}}, Options: unique},
	})
	if err != nil {
		return err
	}

	_, err = MeetingsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "meetingid", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "customerid", Value: 1}}},
		{Keys: bson.D{{Key: "propertyid", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = BookingsCollection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "bookingid", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "customerid", Value: 1}}},
	})
	return err
}
