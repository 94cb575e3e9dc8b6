// Package directory is the shared read side for users and properties.
// Workflow services depend on it instead of touching the collections
// directly.
package directory

import (
	"context"
	"errors"

	"homevia/apperr"
	"homevia/db"
	"homevia/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type Mongo struct{}

func NewMongo() *Mongo {
	return &Mongo{}
}

func (d *Mongo) GetUser(ctx context.Context, userID string) (models.User, error) {
	var u models.User
	err := db.UserCollection.FindOne(ctx, bson.M{"userid": userID}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, apperr.NotFoundf("user %s", userID)
	}
	return u, err
}

func (d *Mongo) GetProperty(ctx context.Context, propertyID string) (models.Property, error) {
	var p models.Property
	err := db.PropertiesCollection.FindOne(ctx, bson.M{"propertyid": propertyID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Property{}, apperr.NotFoundf("property %s", propertyID)
	}
	return p, err
}
