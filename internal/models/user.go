package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles recognized by the clinic. Students only see their own records;
// professors and admins review across all students.
const (
	RoleStudent   = "Student"
	RoleProfessor = "Professor"
	RoleAdmin     = "Admin"
)

func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleProfessor || role == RoleAdmin
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"` // empty for Google accounts
	Role      string             `bson:"role" json:"role"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
