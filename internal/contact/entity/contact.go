package entity

// EmergencyContact is a guardian notified when an anomaly or emergency is raised.
// Contacts are unique by Email within one user's list.
type EmergencyContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}
