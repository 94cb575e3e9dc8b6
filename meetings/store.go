package meetings

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"homevia/apperr"
	"homevia/db"
	"homevia/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists meetings and materializes views by resolving the
// property, both parties and the chat-room token up front. Nothing
// downstream ever needs to load a related record lazily.
type MongoStore struct{}

func NewMongoStore() *MongoStore {
	return &MongoStore{}
}

func (s *MongoStore) Insert(ctx context.Context, m models.Meeting) error {
	_, err := db.MeetingsCollection.InsertOne(ctx, m)
	return err
}

func (s *MongoStore) Get(ctx context.Context, meetingID string) (models.Meeting, error) {
	var m models.Meeting
	err := db.MeetingsCollection.FindOne(ctx, bson.M{"meetingid": meetingID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Meeting{}, apperr.NotFoundf("meeting %s", meetingID)
	}
	return m, err
}

// TransitionStatus applies the status change as one guarded update: the
// filter includes the expected prior status, so a concurrent transition
// that already moved the meeting makes this call fail instead of
// clobbering it.
func (s *MongoStore) TransitionStatus(ctx context.Context, meetingID string, from, to models.MeetingStatus) (models.Meeting, error) {
	res := db.MeetingsCollection.FindOneAndUpdate(ctx,
		bson.M{"meetingid": meetingID, "status": from},
		bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.Meeting
	err := res.Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Meeting{}, s.explainMiss(ctx, meetingID, from, to)
	}
	return updated, err
}

// ApplyProposal overwrites date/time/note and moves PENDING to
// PROPOSED_CHANGE, guarded the same way as TransitionStatus.
func (s *MongoStore) ApplyProposal(ctx context.Context, meetingID, date, tm, note string) (models.Meeting, error) {
	res := db.MeetingsCollection.FindOneAndUpdate(ctx,
		bson.M{"meetingid": meetingID, "status": models.MeetingPending},
		bson.M{"$set": bson.M{
			"status":       models.MeetingProposedChange,
			"meeting_date": date,
			"meeting_time": tm,
			"seller_note":  note,
			"updated_at":   time.Now(),
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.Meeting
	err := res.Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Meeting{}, s.explainMiss(ctx, meetingID, models.MeetingPending, models.MeetingProposedChange)
	}
	return updated, err
}

// explainMiss distinguishes "no such meeting" from "wrong current
// status" after a guarded update matched nothing.
func (s *MongoStore) explainMiss(ctx context.Context, meetingID string, from, to models.MeetingStatus) error {
	current, err := s.Get(ctx, meetingID)
	if err != nil {
		return err
	}
	return fmt.Errorf("meeting %s is %s, not %s, cannot move to %s: %w",
		meetingID, current.Status, from, to, apperr.ErrInvalidTransition)
}

// MeetingParticipants resolves the customer and the property owner of a
// meeting. Satisfies the chat-session manager's authorization hook.
func (s *MongoStore) MeetingParticipants(ctx context.Context, meetingID string) (string, string, error) {
	meeting, err := s.Get(ctx, meetingID)
	if err != nil {
		return "", "", err
	}

	var property models.Property
	err = db.PropertiesCollection.FindOne(ctx, bson.M{"propertyid": meeting.PropertyID}).Decode(&property)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", "", apperr.NotFoundf("property %s", meeting.PropertyID)
	}
	if err != nil {
		return "", "", err
	}
	return meeting.CustomerID, property.OwnerID, nil
}

func (s *MongoStore) View(ctx context.Context, meetingID string) (models.MeetingView, error) {
	meeting, err := s.Get(ctx, meetingID)
	if err != nil {
		return models.MeetingView{}, err
	}
	return s.materialize(ctx, meeting)
}

func (s *MongoStore) ListByCustomer(ctx context.Context, customerID string) ([]models.MeetingView, error) {
	return s.list(ctx, bson.M{"customerid": customerID}, "")
}

// ListBySeller filters by the properties the seller owns.
func (s *MongoStore) ListBySeller(ctx context.Context, sellerID string) ([]models.MeetingView, error) {
	cur, err := db.PropertiesCollection.Find(ctx, bson.M{"ownerid": sellerID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var p models.Property
		if err := cur.Decode(&p); err != nil {
			continue
		}
		ids = append(ids, p.PropertyID)
	}
	if len(ids) == 0 {
		return []models.MeetingView{}, nil
	}
	return s.list(ctx, bson.M{"propertyid": bson.M{"$in": ids}}, "")
}

func (s *MongoStore) list(ctx context.Context, filter bson.M, _ string) ([]models.MeetingView, error) {
	cur, err := db.MeetingsCollection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	views := []models.MeetingView{}
	for cur.Next(ctx) {
		var m models.Meeting
		if err := cur.Decode(&m); err != nil {
			continue
		}
		view, err := s.materialize(ctx, m)
		if err != nil {
			log.Printf("meetings: skipping %s in listing: %v", m.MeetingID, err)
			continue
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *MongoStore) materialize(ctx context.Context, meeting models.Meeting) (models.MeetingView, error) {
	view := models.MeetingView{Meeting: meeting}

	if err := db.PropertiesCollection.FindOne(ctx, bson.M{"propertyid": meeting.PropertyID}).Decode(&view.Property); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.MeetingView{}, apperr.NotFoundf("property %s", meeting.PropertyID)
		}
		return models.MeetingView{}, err
	}

	var customer, seller models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": meeting.CustomerID}).Decode(&customer); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.MeetingView{}, apperr.NotFoundf("user %s", meeting.CustomerID)
		}
		return models.MeetingView{}, err
	}
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": view.Property.OwnerID}).Decode(&seller); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.MeetingView{}, apperr.NotFoundf("user %s", view.Property.OwnerID)
		}
		return models.MeetingView{}, err
	}
	view.Customer = customer.Profile()
	view.Seller = seller.Profile()

	// Room token only while the session is live
	var session models.ChatSession
	err := db.ChatSessionsCollection.FindOne(ctx, bson.M{"meetingid": meeting.MeetingID}).Decode(&session)
	if err == nil && session.Status == models.ChatActive {
		view.RoomToken = session.RoomToken
	}

	return view, nil
}
