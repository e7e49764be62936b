package entity

// ChatSession links exactly one service request to a message channel. The
// session id is derived deterministically from the request id, so at most one
// session can ever exist per request. LastMessage and LastMessageTime are
// denormalized summary fields for list views; they are advisory, never
// authoritative.
type ChatSession struct {
	SessionID       string `json:"session_id" firestore:"-"` // document id
	RequestID       string `json:"request_id" firestore:"requestId"`
	CustomerID      string `json:"customer_id" firestore:"customerId"`
	MechanicID      string `json:"mechanic_id" firestore:"mechanicId"`
	CustomerName    string `json:"customer_name" firestore:"customerName"`
	MechanicName    string `json:"mechanic_name" firestore:"mechanicName"`
	LastMessage     string `json:"last_message" firestore:"lastMessage"`
	LastMessageTime int64  `json:"last_message_time" firestore:"lastMessageTime"`
	CreatedAt       int64  `json:"created_at" firestore:"createdAt"`
	UpdatedAt       int64  `json:"updated_at" firestore:"updatedAt"`
}
