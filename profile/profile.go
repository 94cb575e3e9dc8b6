// Package profile serves and edits the caller's own account.
package profile

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"homevia/db"
	"homevia/filemgr"
	"homevia/models"
	"homevia/utils"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

func GetProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	callerID := utils.GetUserIDFromRequest(r)

	var user models.User
	err := db.UserCollection.FindOne(r.Context(), bson.M{"userid": callerID}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Database error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user.Profile())
}

type editInput struct {
	FullName    string `json:"full_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Address     string `json:"address,omitempty"`
	Password    string `json:"password,omitempty"`
}

// EditProfile updates contact details and, optionally, the password.
func EditProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input editInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	set := bson.M{"updated_at": time.Now()}
	if input.FullName != "" {
		set["full_name"] = input.FullName
	}
	if input.PhoneNumber != "" {
		set["phone_number"] = input.PhoneNumber
	}
	if input.Address != "" {
		set["address"] = input.Address
	}
	if input.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Could not process password")
			return
		}
		set["password"] = string(hashed)
	}

	callerID := utils.GetUserIDFromRequest(r)
	var updated models.User
	err := db.UserCollection.FindOneAndUpdate(r.Context(),
		bson.M{"userid": callerID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Could not update profile")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, updated.Profile())
}

// UploadAvatar stores a profile picture and thumbnail.
func UploadAvatar(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to parse form")
		return
	}

	name, err := filemgr.SaveFormFile(r.MultipartForm, "avatar", filemgr.EntityUser, filemgr.PicPhoto, true)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"avatar": name})
}
