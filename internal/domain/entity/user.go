package entity

// User is a marketplace profile stored under its role partition.
type User struct {
	ID        string `firestore:"-" json:"id"`
	FirstName string `firestore:"firstName" json:"firstName"`
	LastName  string `firestore:"lastName" json:"lastName"`
	Email     string `firestore:"email" json:"email"`
	Phone     string `firestore:"phone" json:"phone"`
	Role      Role   `firestore:"role" json:"role"`
	BirthDate string `firestore:"birthDate" json:"birthDate"` // Format: YYYY-MM-DD
	Image     string `firestore:"image" json:"image"`
}

func (u *User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
