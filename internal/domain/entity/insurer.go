package entity

const InsurersCollection = "insurers"

// Insurer is a user profile extended with the company it represents.
type Insurer struct {
	ID            string `firestore:"-" json:"id"`
	FirstName     string `firestore:"firstName" json:"firstName"`
	LastName      string `firestore:"lastName" json:"lastName"`
	Email         string `firestore:"email" json:"email"`
	Phone         string `firestore:"phone" json:"phone"`
	FiscalID      string `firestore:"fiscalId" json:"fiscalId"`
	Direction     string `firestore:"direction" json:"direction"`
	LicenseNumber string `firestore:"licenseNumber" json:"licenseNumber"`
	CompanyName   string `firestore:"companyName" json:"companyName"`
	Description   string `firestore:"description" json:"description"`
	BirthDate     string `firestore:"birthDate" json:"birthDate"`
	Image         string `firestore:"image" json:"image"`
	Role          Role   `firestore:"role" json:"role"`
}

func (i *Insurer) DisplayName() string {
	if i.CompanyName != "" {
		return i.CompanyName
	}
	if i.LastName == "" {
		return i.FirstName
	}
	return i.FirstName + " " + i.LastName
}
