package entity

// DefaultMaxDistanceKm is assumed when a mechanic has not declared a service
// radius.
const DefaultMaxDistanceKm = 50.0

// MechanicLocation is the last reported position of a mechanic. Timestamp is
// unix milliseconds of the fix, written by the mechanics app.
type MechanicLocation struct {
	Latitude  float64 `json:"latitude" firestore:"latitude"`
	Longitude float64 `json:"longitude" firestore:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty" firestore:"accuracy,omitempty"`
	Timestamp int64   `json:"timestamp,omitempty" firestore:"timestamp,omitempty"`
}

type MechanicPreferences struct {
	HourlyRate  float64 `json:"hourly_rate" firestore:"hourlyRate"`
	MaxDistance float64 `json:"max_distance" firestore:"maxDistance"` // km, mechanic-declared service radius
}

// Mechanic is a service professional. Created and updated by the mechanics
// app; this service only reads them.
type Mechanic struct {
	ID                string              `json:"id" firestore:"id"`
	FirstName         string              `json:"first_name" firestore:"firstName"`
	LastName          string              `json:"last_name" firestore:"lastName"`
	BusinessName      string              `json:"business_name" firestore:"businessName"`
	Rating            float64             `json:"rating" firestore:"rating"`
	TotalJobs         int                 `json:"total_jobs" firestore:"totalJobs"`
	YearsOfExperience int                 `json:"years_of_experience" firestore:"yearsOfExperience"`
	Specializations   []string            `json:"specializations" firestore:"specializations"`
	Location          *MechanicLocation   `json:"location,omitempty" firestore:"location,omitempty"`
	Preferences       MechanicPreferences `json:"preferences" firestore:"preferences"`
	IsOnline          bool                `json:"is_online" firestore:"isOnline"`
	IsAvailable       bool                `json:"is_available" firestore:"isAvailable"`
	IsActive          bool                `json:"is_active" firestore:"isActive"`

	// Distance from the searching customer in km, computed at match time.
	Distance float64 `json:"distance,omitempty" firestore:"-"`
}

// MaxDistanceKm returns the mechanic's declared service radius, falling back
// to the default when none is set.
func (m *Mechanic) MaxDistanceKm() float64 {
	if m.Preferences.MaxDistance <= 0 {
		return DefaultMaxDistanceKm
	}
	return m.Preferences.MaxDistance
}

// FullName returns the mechanic's display name.
func (m *Mechanic) FullName() string {
	return m.FirstName + " " + m.LastName
}
