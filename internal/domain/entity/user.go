package entity

// User is a customer profile as written by the auth flow. Read-only here;
// the dispatch core only needs the display name and phone at request
// creation time.
type User struct {
	ID        string `json:"id" firestore:"id"`
	Email     string `json:"email" firestore:"email"`
	FirstName string `json:"first_name" firestore:"firstName"`
	LastName  string `json:"last_name" firestore:"lastName"`
	Phone     string `json:"phone,omitempty" firestore:"phone,omitempty"`
}

// DisplayName returns the name shown to mechanics on a request.
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}
