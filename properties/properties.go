// Package properties implements listing CRUD. Listings belong to
// approved sellers; admins can edit or remove any listing.
package properties

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"homevia/db"
	"homevia/filemgr"
	"homevia/models"
	"homevia/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Create accepts a multipart form so images can ride along with the
// listing fields.
func Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	callerID := utils.GetUserIDFromRequest(r)

	var caller models.User
	if err := db.UserCollection.FindOne(r.Context(), bson.M{"userid": callerID}).Decode(&caller); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unknown user")
		return
	}
	if caller.Role == models.RoleSeller && caller.Approval != models.ApprovalApproved {
		utils.RespondWithError(w, http.StatusForbidden, "Seller account not approved yet")
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	property := models.Property{
		PropertyID:  "p" + utils.GenerateRandomString(12),
		OwnerID:     callerID,
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Address:     r.FormValue("address"),
		HouseNumber: r.FormValue("house_number"),
		City:        r.FormValue("city"),
		District:    r.FormValue("district"),
		Amenities:   r.MultipartForm.Value["amenities"],
		CreatedAt:   time.Now(),
	}
	if property.Title == "" || property.Address == "" || property.City == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Title, address and city are required")
		return
	}
	if v := r.FormValue("price"); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil || price < 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid price")
			return
		}
		property.Price = price
	}
	if v := r.FormValue("bedrooms"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid bedrooms")
			return
		}
		property.Bedrooms = n
	}
	if v := r.FormValue("latitude"); v != "" {
		property.Latitude, _ = strconv.ParseFloat(v, 64)
	}
	if v := r.FormValue("longitude"); v != "" {
		property.Longitude, _ = strconv.ParseFloat(v, 64)
	}

	images, err := filemgr.SaveFormFiles(r.MultipartForm, "images", filemgr.EntityProperty, filemgr.PicPhoto, false)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	property.Images = images

	if _, err := db.PropertiesCollection.InsertOne(r.Context(), property); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not create property")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, property)
}

func Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var property models.Property
	err := db.PropertiesCollection.FindOne(r.Context(), bson.M{"propertyid": ps.ByName("propertyid")}).Decode(&property)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.RespondWithError(w, http.StatusNotFound, "Property not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if callerID := utils.GetUserIDFromRequest(r); callerID != "" {
		property.Editable = callerID == property.OwnerID || utils.GetRoleFromRequest(r) == models.RoleAdmin
	}
	utils.RespondWithJSON(w, http.StatusOK, property)
}

// List supports optional city, district, price and bedroom filters plus
// paging via ?page and ?limit.
func List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	filter := bson.M{}

	if city := q.Get("city"); city != "" {
		filter["city"] = city
	}
	if district := q.Get("district"); district != "" {
		filter["district"] = district
	}
	price := bson.M{}
	if v := q.Get("min_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			price["$gte"] = f
		}
	}
	if v := q.Get("max_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			price["$lte"] = f
		}
	}
	if len(price) > 0 {
		filter["price"] = price
	}
	if v := q.Get("bedrooms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter["bedrooms"] = bson.M{"$gte": n}
		}
	}

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := db.PropertiesCollection.Find(r.Context(), filter, opts)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(r.Context())

	properties := []models.Property{}
	if err := cursor.All(r.Context(), &properties); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error processing properties")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, properties)
}

// ListMine returns the caller's own listings.
func ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	callerID := utils.GetUserIDFromRequest(r)

	cursor, err := db.PropertiesCollection.Find(r.Context(), bson.M{"ownerid": callerID})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(r.Context())

	properties := []models.Property{}
	if err := cursor.All(r.Context(), &properties); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error processing properties")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, properties)
}

func requireOwnerOrAdmin(ctx context.Context, r *http.Request, propertyID string) (models.Property, int, string) {
	var property models.Property
	err := db.PropertiesCollection.FindOne(ctx, bson.M{"propertyid": propertyID}).Decode(&property)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return property, http.StatusNotFound, "Property not found"
	}
	if err != nil {
		return property, http.StatusInternalServerError, "Database error"
	}

	callerID := utils.GetUserIDFromRequest(r)
	if utils.GetRoleFromRequest(r) != models.RoleAdmin && property.OwnerID != callerID {
		return property, http.StatusForbidden, "Not the owner of this property"
	}
	return property, 0, ""
}

// Update overwrites the mutable listing fields. Owner or admin only.
func Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	propertyID := ps.ByName("propertyid")
	if _, code, msg := requireOwnerOrAdmin(r.Context(), r, propertyID); code != 0 {
		utils.RespondWithError(w, code, msg)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	set := bson.M{}
	for field, value := range map[string]string{
		"title":        r.FormValue("title"),
		"description":  r.FormValue("description"),
		"address":      r.FormValue("address"),
		"house_number": r.FormValue("house_number"),
		"city":         r.FormValue("city"),
		"district":     r.FormValue("district"),
	} {
		if value != "" {
			set[field] = value
		}
	}
	if v := r.FormValue("price"); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil && price >= 0 {
			set["price"] = price
		}
	}
	if v := r.FormValue("bedrooms"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			set["bedrooms"] = n
		}
	}
	if amenities := r.MultipartForm.Value["amenities"]; len(amenities) > 0 {
		set["amenities"] = amenities
	}

	if images, err := filemgr.SaveFormFiles(r.MultipartForm, "images", filemgr.EntityProperty, filemgr.PicPhoto, false); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	} else if len(images) > 0 {
		set["images"] = images
	}

	if len(set) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	var updated models.Property
	err := db.PropertiesCollection.FindOneAndUpdate(r.Context(),
		bson.M{"propertyid": propertyID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not update property")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, updated)
}

func Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	propertyID := ps.ByName("propertyid")
	if _, code, msg := requireOwnerOrAdmin(r.Context(), r, propertyID); code != 0 {
		utils.RespondWithError(w, code, msg)
		return
	}

	if _, err := db.PropertiesCollection.DeleteOne(r.Context(), bson.M{"propertyid": propertyID}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not delete property")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"deleted": true})
}

// ListAmenities returns the catalog of known amenities.
func ListAmenities(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	cursor, err := db.AmenitiesCollection.Find(r.Context(), bson.M{})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer cursor.Close(r.Context())

	amenities := []models.Amenity{}
	if err := cursor.All(r.Context(), &amenities); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error processing amenities")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, amenities)
}

// AddAmenity extends the catalog; admin only (enforced at the route).
func AddAmenity(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	name := r.FormValue("name")
	if name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Name is required")
		return
	}

	amenity := models.Amenity{
		AmenityID: "a" + utils.GenerateRandomString(8),
		Name:      name,
	}
	if _, err := db.AmenitiesCollection.InsertOne(r.Context(), amenity); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not add amenity")
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, amenity)
}
