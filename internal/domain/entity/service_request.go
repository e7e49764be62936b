package entity

// Service request statuses. Transitions are written by the mechanics app;
// this service only observes them. Cancellation is modeled as deletion of
// both physical copies, not as a stored status.
const (
	RequestStatusPending   = "pending"
	RequestStatusAccepted  = "accepted"
	RequestStatusDeclined  = "declined"
	RequestStatusQuoted    = "quoted"
	RequestStatusCompleted = "completed"
)

// ServiceRequest is the central dispatch entity. One logical request is
// stored as two physical copies: one in the global "requests" collection
// (auto document id, RequestID as a field) and one under
// mechanics/{mechanicId}/requests/{requestId}. Both carry the same RequestID
// and the mechanics app keeps their statuses synchronized.
//
// Timestamps are unix milliseconds, matching what the mechanics app writes.
type ServiceRequest struct {
	DocID         string   `json:"-" firestore:"-"` // storage id of the global copy
	RequestID     string   `json:"request_id" firestore:"requestId"`
	CustomerID    string   `json:"customer_id" firestore:"customerId"`
	CustomerName  string   `json:"customer_name" firestore:"customerName"`
	CustomerPhone string   `json:"customer_phone,omitempty" firestore:"customerPhone,omitempty"`
	MechanicID    string   `json:"mechanic_id" firestore:"mechanicId"`
	MechanicName  string   `json:"mechanic_name" firestore:"mechanicName"`
	ServiceType   string   `json:"service_type" firestore:"serviceType"`
	Location      Location `json:"location" firestore:"location"`
	Address       string   `json:"address,omitempty" firestore:"address,omitempty"`
	Description   string   `json:"description,omitempty" firestore:"description,omitempty"`
	Status        string   `json:"status" firestore:"status"`
	CreatedAt     int64    `json:"created_at" firestore:"createdAt"`
	UpdatedAt     int64    `json:"updated_at" firestore:"updatedAt"`

	AcceptedAt       int64   `json:"accepted_at,omitempty" firestore:"acceptedAt,omitempty"`
	QuoteAmount      float64 `json:"quote_amount,omitempty" firestore:"quoteAmount,omitempty"`
	QuoteDescription string  `json:"quote_description,omitempty" firestore:"quoteDescription,omitempty"`
	QuotedAt         int64   `json:"quoted_at,omitempty" firestore:"quotedAt,omitempty"`
	CompletedAt      int64   `json:"completed_at,omitempty" firestore:"completedAt,omitempty"`
}

// IsTerminal reports whether no further transition is expected.
func (r *ServiceRequest) IsTerminal() bool {
	return r.Status == RequestStatusCompleted || r.Status == RequestStatusDeclined
}

// ValidStatus reports whether s is a known request status.
func ValidStatus(s string) bool {
	switch s {
	case RequestStatusPending, RequestStatusAccepted, RequestStatusDeclined,
		RequestStatusQuoted, RequestStatusCompleted:
		return true
	}
	return false
}
