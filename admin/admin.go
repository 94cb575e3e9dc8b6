// Package admin exposes the back-office endpoints: account review for
// sellers, user and property oversight, and platform stats.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"homevia/db"
	"homevia/models"
	"homevia/rdx"
	"homevia/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Notifier is the slice of the dispatcher the back office uses to tell
// sellers about approval decisions.
type Notifier interface {
	Dispatch(recipient models.UserProfileResponse, subject, body string)
}

type Handlers struct {
	notifier Notifier
}

func NewHandlers(notifier Notifier) *Handlers {
	return &Handlers{notifier: notifier}
}

func (h *Handlers) listUsers(w http.ResponseWriter, filter bson.M) {
	cursor, err := db.UserCollection.Find(context.TODO(), filter)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	defer cursor.Close(context.TODO())

	var users []models.User
	if err := cursor.All(context.TODO(), &users); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error processing users")
		return
	}

	profiles := make([]models.UserProfileResponse, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.Profile())
	}
	utils.RespondWithJSON(w, http.StatusOK, profiles)
}

func (h *Handlers) ListSellers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.listUsers(w, bson.M{"role": models.RoleSeller})
}

func (h *Handlers) ListCustomers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.listUsers(w, bson.M{"role": models.RoleCustomer})
}

// ListPendingSellers returns seller accounts awaiting review.
func (h *Handlers) ListPendingSellers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	h.listUsers(w, bson.M{"role": models.RoleSeller, "approval": models.ApprovalPending})
}

// SetSellerApproval approves or rejects a seller account and notifies
// the seller of the outcome.
func (h *Handlers) SetSellerApproval(approval models.ApprovalStatus) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		userID := ps.ByName("userid")

		var seller models.User
		err := db.UserCollection.FindOneAndUpdate(context.TODO(),
			bson.M{"userid": userID, "role": models.RoleSeller},
			bson.M{"$set": bson.M{"approval": approval, "updated_at": time.Now()}},
		).Decode(&seller)
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, "Seller not found")
			return
		}
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update seller")
			return
		}

		seller.Approval = approval
		subject := "Your seller account was approved"
		body := "Congratulations " + seller.Username + ", your seller account has been approved. You can now list properties."
		if approval == models.ApprovalRejected {
			subject = "Your seller account was rejected"
			body = "We are sorry " + seller.Username + ", your seller account application has been rejected."
		}
		h.notifier.Dispatch(seller.Profile(), subject, body)

		if err := rdx.RdxDel(statsCacheKey); err != nil {
			log.Printf("stats cache drop failed: %v", err)
		}

		utils.RespondWithJSON(w, http.StatusOK, seller.Profile())
	}
}

// ListProperties returns every property regardless of owner.
func (h *Handlers) ListProperties(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cursor, err := db.PropertiesCollection.Find(context.TODO(), bson.M{})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch properties")
		return
	}
	defer cursor.Close(context.TODO())

	var properties []models.Property
	if err := cursor.All(context.TODO(), &properties); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error processing properties")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, properties)
}

// DeleteUser removes an account. The user's properties are orphaned on
// purpose; listings survive history queries.
func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	res, err := db.UserCollection.DeleteOne(context.TODO(), bson.M{"userid": ps.ByName("userid")})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}
	if res.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}
	if err := rdx.RdxDel(statsCacheKey); err != nil {
		log.Printf("stats cache drop failed: %v", err)
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"deleted": true})
}

const statsCacheKey = "admin:stats"
const statsCacheTTL = time.Minute

// Stats returns platform-wide counts for the dashboard. Counts are
// cached in Redis for a minute; mutations that change them drop the
// cache.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if cached, err := rdx.RdxGet(statsCacheKey); err == nil && cached != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(cached))
		return
	}

	ctx := context.TODO()
	counts := utils.M{}

	for name, col := range map[string]*mongo.Collection{
		"users":      db.UserCollection,
		"properties": db.PropertiesCollection,
		"meetings":   db.MeetingsCollection,
		"bookings":   db.BookingsCollection,
		"reviews":    db.ReviewsCollection,
	} {
		n, err := col.CountDocuments(ctx, bson.M{})
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to compute stats")
			return
		}
		counts[name] = n
	}

	pending, err := db.UserCollection.CountDocuments(ctx,
		bson.M{"role": models.RoleSeller, "approval": models.ApprovalPending})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	counts["pending_sellers"] = pending

	if body, err := json.Marshal(counts); err == nil {
		if err := rdx.SetWithExpiry(statsCacheKey, string(body), statsCacheTTL); err != nil {
			log.Printf("stats cache write failed: %v", err)
		}
	}

	utils.RespondWithJSON(w, http.StatusOK, counts)
}
