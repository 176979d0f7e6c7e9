// internal/domain/models/registration.go
package models

// Registration is a participant's user record in the registrations
// collection, keyed by ShortID (the token printed on the participant's pass).
//
// Deleted marks a soft-deleted record; such records never reach a roster.
type Registration struct {
	ShortID   string    `bson:"shortId" json:"short_id"`
	Name      string    `bson:"name,omitempty" json:"name,omitempty"`
	Username  string    `bson:"username,omitempty" json:"username,omitempty"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	College   string    `bson:"college,omitempty" json:"college,omitempty"`
	Course    string    `bson:"course,omitempty" json:"course,omitempty"`
	CreatedAt Timestamp `bson:"createdAt" json:"created_at"`
	Deleted   bool      `bson:"deleted,omitempty" json:"deleted,omitempty"`
}
