// internal/domain/models/selection.go
package models

import (
	"go.mongodb.org/mongo-driver/bson"
)

// PaymentStatus is the payment state recorded on a selection record.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// SelectionRecord is one participant's set of event selections, written by
// the registration flow into the eventSelections collection.
//
// NOTE:
//   - ID is the document's native _id; ObjectIDs decode as hex.
//   - OwnerToken matches Registration.ShortID.
//   - A record may select several events.
type SelectionRecord struct {
	ID            string        `bson:"_id,omitempty" json:"id"`
	OwnerToken    string        `bson:"userToken" json:"user_token"`
	Selections    []Selection   `bson:"selections" json:"selections"`
	PaymentStatus PaymentStatus `bson:"paymentStatus,omitempty" json:"payment_status,omitempty"`
	CreatedAt     Timestamp     `bson:"createdAt" json:"created_at"`
}

// Selection is one entry in SelectionRecord.Selections. Fields other than
// eventId are kept as-is in Extra.
type Selection struct {
	EventID string `bson:"eventId" json:"event_id"`
	Extra   bson.M `bson:",inline" json:"-"`
}

// Selects reports whether the record contains a selection for eventID.
func (s SelectionRecord) Selects(eventID string) bool {
	for _, sel := range s.Selections {
		if sel.EventID == eventID {
			return true
		}
	}
	return false
}
