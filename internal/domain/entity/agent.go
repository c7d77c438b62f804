package entity

const AgentsCollection = "agents"

// Agent is a flat contact record for a sales agent.
type Agent struct {
	ID            string `firestore:"-" json:"id"`
	Name          string `firestore:"name" json:"name"`
	Email         string `firestore:"email" json:"email"`
	Phone         string `firestore:"phone" json:"phone"`
	Company       string `firestore:"company" json:"company"`
	LicenseNumber string `firestore:"licenseNumber" json:"licenseNumber"`
}
