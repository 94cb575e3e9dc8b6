// Package reviews lets customers rate properties they have visited or
// stayed at.
package reviews

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"homevia/db"
	"homevia/models"
	"homevia/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GetReviews lists a property's reviews, newest first.
func GetReviews(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	skip, limit := utils.ParsePagination(r, 10, 100)
	sort := utils.ParseSort(r.URL.Query().Get("sort"), bson.D{{Key: "created_at", Value: -1}},
		map[string]bool{"created_at": true, "rating": true})

	filter := bson.M{"propertyid": ps.ByName("propertyid")}
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(sort)

	found, err := utils.FindAndDecode[models.Review](ctx, db.ReviewsCollection, filter, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve reviews")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"ok": true, "reviews": found})
}

type reviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// AddReview stores one review per user per property.
func AddReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var input reviewInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.Rating < 1 || input.Rating > 5 {
		utils.RespondWithError(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	propertyID := ps.ByName("propertyid")
	callerID := utils.GetUserIDFromRequest(r)

	err := db.PropertiesCollection.FindOne(r.Context(), bson.M{"propertyid": propertyID}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.RespondWithError(w, http.StatusNotFound, "Property not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}

	existing := db.ReviewsCollection.FindOne(r.Context(), bson.M{"propertyid": propertyID, "userid": callerID}).Err()
	if existing == nil {
		utils.RespondWithError(w, http.StatusConflict, "You already reviewed this property")
		return
	}

	review := models.Review{
		ReviewID:   "r" + utils.GenerateRandomString(10),
		PropertyID: propertyID,
		UserID:     callerID,
		Rating:     input.Rating,
		Comment:    input.Comment,
		CreatedAt:  time.Now(),
	}
	if _, err := db.ReviewsCollection.InsertOne(r.Context(), review); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not save review")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, review)
}

// DeleteReview removes the caller's own review; admins may remove any.
func DeleteReview(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	filter := bson.M{"reviewid": ps.ByName("reviewid")}
	if utils.GetRoleFromRequest(r) != models.RoleAdmin {
		filter["userid"] = utils.GetUserIDFromRequest(r)
	}

	res, err := db.ReviewsCollection.DeleteOne(r.Context(), filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not delete review")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Review not found")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"deleted": true})
}
