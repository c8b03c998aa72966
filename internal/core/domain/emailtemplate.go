package domain

import "time"

// EmailTemplate holds the prefilled email for sending a customer their
// invoices. At most one template exists per customer; saving upserts the
// single row.
type EmailTemplate struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	OwnerID    string    `json:"owner_id" bson:"owner_id"`
	CustomerID string    `json:"customer_id" bson:"customer_id"`
	Subject    string    `json:"subject" bson:"subject"`
	Body       string    `json:"body" bson:"body"`
	Recipients []string  `json:"recipients" bson:"recipients"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}
