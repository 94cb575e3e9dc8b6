package models

import "time"

// Role of an account. Stored as a string but only the three
// constants below are valid.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
	RoleSeller   Role = "SELLER"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCustomer, RoleSeller:
		return true
	}
	return false
}

// ApprovalStatus tracks admin review of seller accounts. Customers are
// approved on registration.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

type User struct {
	UserID        string         `json:"userid" bson:"userid"`
	Username      string         `json:"username" bson:"username"`
	Email         string         `json:"email" bson:"email"`
	Password      string         `json:"-" bson:"password"`
	Role          Role           `json:"role" bson:"role"`
	Approval      ApprovalStatus `json:"approval" bson:"approval"`
	FullName      string         `json:"full_name,omitempty" bson:"full_name,omitempty"`
	PhoneNumber   string         `json:"phone_number,omitempty" bson:"phone_number,omitempty"`
	Address       string         `json:"address,omitempty" bson:"address,omitempty"`
	CreatedAt     time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at" bson:"updated_at"`
	LastLogin     time.Time      `json:"last_login" bson:"last_login"`
	RefreshToken  string         `json:"-" bson:"refreshtoken,omitempty"`
	RefreshExpiry time.Time      `json:"-" bson:"refreshexp,omitempty"`
}

// UserProfileResponse is the public shape of a user returned by profile
// and admin endpoints.
type UserProfileResponse struct {
	UserID      string         `json:"userid"`
	Username    string         `json:"username"`
	Email       string         `json:"email"`
	Role        Role           `json:"role"`
	Approval    ApprovalStatus `json:"approval"`
	FullName    string         `json:"full_name,omitempty"`
	PhoneNumber string         `json:"phone_number,omitempty"`
	Address     string         `json:"address,omitempty"`
}

func (u User) Profile() UserProfileResponse {
	return UserProfileResponse{
		UserID:      u.UserID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		Approval:    u.Approval,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
	}
}
