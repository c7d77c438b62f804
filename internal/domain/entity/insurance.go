package entity

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// InsuranceServiceGroup is the last path segment shared by every insurance
// type partition, used for collection-group queries.
const InsuranceServiceGroup = "serviceData"

const InsuranceImagePrefix = "insurance_images"

// Insurance is a product offered in the catalog. Active only controls
// visibility; deletion is a hard delete.
type Insurance struct {
	ID          string          `firestore:"-" json:"id"`
	Name        string          `firestore:"name" json:"name"`
	Type        string          `firestore:"type" json:"type"`
	Price       decimal.Decimal `firestore:"price" json:"price"`
	Description string          `firestore:"description" json:"description"`
	Image       string          `firestore:"image" json:"image"`
	Active      bool            `firestore:"active" json:"active"`
}

// InsurancePartition returns the collection holding insurances of a type.
func InsurancePartition(insuranceType string) (string, error) {
	t := strings.TrimSpace(insuranceType)
	if t == "" || strings.Contains(t, "/") {
		return "", fmt.Errorf("invalid insurance type %q", insuranceType)
	}
	return "insuranceServices/" + t + "/" + InsuranceServiceGroup, nil
}

func InsuranceImageKey(id string) string {
	return InsuranceImagePrefix + "/" + id
}
