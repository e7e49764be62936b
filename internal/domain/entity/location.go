package entity

// Location is a latitude/longitude fix in decimal degrees. Value type, no
// identity.
type Location struct {
	Latitude  float64 `json:"latitude" firestore:"latitude"`
	Longitude float64 `json:"longitude" firestore:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty" firestore:"accuracy,omitempty"`
}
