package entity

const (
	SenderTypeCustomer = "customer"
	SenderTypeMechanic = "mechanic"
)

// ChatMessage is append-only; the only mutation ever applied is flipping
// Read. Timestamp is unix milliseconds and defines message order within a
// session.
type ChatMessage struct {
	ID         string `json:"id" firestore:"id"`
	SenderID   string `json:"sender_id" firestore:"senderId"`
	SenderType string `json:"sender_type" firestore:"senderType"` // "customer" or "mechanic"
	SenderName string `json:"sender_name" firestore:"senderName"`
	Content    string `json:"content" firestore:"content"`
	Read       bool   `json:"read" firestore:"read"`
	Timestamp  int64  `json:"timestamp" firestore:"timestamp"`
}
