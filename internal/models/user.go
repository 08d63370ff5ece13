// Package models defines data structures for the application.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a parent account practising on behalf of a child.
type User struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty" example:"507f1f77bcf86cd799439011"`
	Email              string             `json:"email" bson:"email" example:"parent@example.com"`
	Password           string             `json:"-" bson:"password"` // "-" = never include in JSON response
	Name               string             `json:"name" bson:"name" example:"Jane Doe"`
	Picture            string             `json:"picture,omitempty" bson:"picture,omitempty"`
	PhoneNumber        string             `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty" example:"+15551234567"`
	ChildAge           int                `json:"childAge,omitempty" bson:"childAge,omitempty" example:"6"`
	Region             string             `json:"region,omitempty" bson:"region,omitempty" example:"US"`
	ProblemDescription string             `json:"problemDescription,omitempty" bson:"problemDescription,omitempty" example:"Mixes up V and B"`
	RecordingConsent   bool               `json:"recordingConsent" bson:"recordingConsent"`
	ProfileCompleted   bool               `json:"profileCompleted" bson:"profileCompleted"`
	CreatedAt          time.Time          `json:"createdAt" bson:"createdAt" example:"2024-01-15T09:30:00Z"`
	UpdatedAt          time.Time          `json:"updatedAt" bson:"updatedAt" example:"2024-01-15T09:30:00Z"`
}

// CreateUserRequest is the payload for registering a parent account.
type CreateUserRequest struct {
	Name               string `json:"name" binding:"required,min=2" example:"Jane Doe"`
	Email              string `json:"email" binding:"required,email" example:"parent@example.com"`
	Password           string `json:"password" binding:"required,min=6" example:"secret123"`
	PhoneNumber        string `json:"phoneNumber" binding:"omitempty,e164" example:"+15551234567"`
	ChildAge           int    `json:"childAge" binding:"omitempty,min=1,max=18" example:"6"`
	Region             string `json:"region" binding:"omitempty,max=64" example:"US"`
	ProblemDescription string `json:"problemDescription" binding:"omitempty,max=1000" example:"Mixes up V and B"`
	RecordingConsent   bool   `json:"recordingConsent" example:"true"`
}

// UpdateUserRequest is the payload for updating the current profile.
type UpdateUserRequest struct {
	Name               *string `json:"name" binding:"omitempty,min=2" example:"Jane Doe"`
	PhoneNumber        *string `json:"phoneNumber" binding:"omitempty,e164" example:"+15551234567"`
	ChildAge           *int    `json:"childAge" binding:"omitempty,min=1,max=18" example:"7"`
	Region             *string `json:"region" binding:"omitempty,max=64" example:"UK"`
	ProblemDescription *string `json:"problemDescription" binding:"omitempty,max=1000"`
	RecordingConsent   *bool   `json:"recordingConsent" example:"true"`
}

// LoginRequest is the payload for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"parent@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}
