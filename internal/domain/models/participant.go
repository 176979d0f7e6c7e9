// internal/domain/models/participant.go
package models

// Participant is the composite produced by joining a SelectionRecord with
// its Registration. JoinID is the selection record's _id and is unique
// within a roster.
type Participant struct {
	JoinID string `json:"join_id"`

	Token     string    `json:"token"`
	Name      string    `json:"name,omitempty"`
	Username  string    `json:"username,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	College   string    `json:"college,omitempty"`
	Course    string    `json:"course,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
	Deleted   bool      `json:"-"`

	PaymentStatus    PaymentStatus `json:"payment_status"`
	RegistrationDate Timestamp     `json:"registration_date"`
}

// DisplayName returns Name, falling back to Username.
func (p Participant) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Username
}
