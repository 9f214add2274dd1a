package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a single account document in MongoDB. Local accounts carry a
// username and a bcrypt hash; Google accounts carry a google_id. A record
// is always reachable through at least one of the two.
type User struct {
	ID        primitive.ObjectID `json:"id"         bson:"_id,omitempty"`
	Username  string             `json:"username"   bson:"username,omitempty"`
	Password  string             `json:"-"          bson:"password,omitempty"` // never serialize
	GoogleID  string             `json:"-"          bson:"google_id,omitempty"`
	Secret    string             `json:"secret"     bson:"secret,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}

// HasSecret reports whether the user has submitted a secret.
func (u *User) HasSecret() bool { return u.Secret != "" }
