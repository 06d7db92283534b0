package inquiries

import "time"

// Status of an inquiry.
const (
	StatusOpen     = "open"
	StatusAnswered = "answered"
)

// Inquiry is a buyer's question about a listing, answered once by the seller.
type Inquiry struct {
	ID         string     `json:"id"`
	BuyerID    string     `json:"buyer_id"`
	SellerID   string     `json:"seller_id"`
	ProductID  string     `json:"product_id"`
	Question   string     `json:"question"`
	Answer     string     `json:"answer,omitempty"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	AnsweredAt *time.Time `json:"answered_at,omitempty"`
}
