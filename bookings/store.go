package bookings

import (
	"context"
	"errors"
	"log"

	"homevia/apperr"
	"homevia/db"
	"homevia/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct{}

func NewMongoStore() *MongoStore {
	return &MongoStore{}
}

func (s *MongoStore) Insert(ctx context.Context, b models.Booking) error {
	_, err := db.BookingsCollection.InsertOne(ctx, b)
	return err
}

func (s *MongoStore) Get(ctx context.Context, bookingID string) (models.Booking, error) {
	var b models.Booking
	err := db.BookingsCollection.FindOne(ctx, bson.M{"bookingid": bookingID}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Booking{}, apperr.NotFoundf("booking %s", bookingID)
	}
	return b, err
}

// SetStatus overwrites unconditionally; the booking workflow carries no
// transition guard.
func (s *MongoStore) SetStatus(ctx context.Context, bookingID string, status models.BookingStatus) (models.Booking, error) {
	res := db.BookingsCollection.FindOneAndUpdate(ctx,
		bson.M{"bookingid": bookingID},
		bson.M{"$set": bson.M{"status": status}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var updated models.Booking
	err := res.Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Booking{}, apperr.NotFoundf("booking %s", bookingID)
	}
	return updated, err
}

func (s *MongoStore) View(ctx context.Context, bookingID string) (models.BookingView, error) {
	booking, err := s.Get(ctx, bookingID)
	if err != nil {
		return models.BookingView{}, err
	}
	return s.materialize(ctx, booking)
}

func (s *MongoStore) ListByCustomer(ctx context.Context, customerID string) ([]models.BookingView, error) {
	return s.list(ctx, bson.M{"customerid": customerID})
}

func (s *MongoStore) ListByProperty(ctx context.Context, propertyID string) ([]models.BookingView, error) {
	return s.list(ctx, bson.M{"propertyid": propertyID})
}

func (s *MongoStore) list(ctx context.Context, filter bson.M) ([]models.BookingView, error) {
	cur, err := db.BookingsCollection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	views := []models.BookingView{}
	for cur.Next(ctx) {
		var b models.Booking
		if err := cur.Decode(&b); err != nil {
			continue
		}
		view, err := s.materialize(ctx, b)
		if err != nil {
			log.Printf("bookings: skipping %s in listing: %v", b.BookingID, err)
			continue
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *MongoStore) materialize(ctx context.Context, booking models.Booking) (models.BookingView, error) {
	view := models.BookingView{Booking: booking}

	if err := db.PropertiesCollection.FindOne(ctx, bson.M{"propertyid": booking.PropertyID}).Decode(&view.Property); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.BookingView{}, apperr.NotFoundf("property %s", booking.PropertyID)
		}
		return models.BookingView{}, err
	}

	var customer, seller models.User
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": booking.CustomerID}).Decode(&customer); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.BookingView{}, apperr.NotFoundf("user %s", booking.CustomerID)
		}
		return models.BookingView{}, err
	}
	if err := db.UserCollection.FindOne(ctx, bson.M{"userid": view.Property.OwnerID}).Decode(&seller); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.BookingView{}, apperr.NotFoundf("user %s", view.Property.OwnerID)
		}
		return models.BookingView{}, err
	}
	view.Customer = customer.Profile()
	view.Seller = seller.Profile()
	return view, nil
}
