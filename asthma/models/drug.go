package models

import "time"

// DrugFill is one pharmacy claim.
type DrugFill struct {
	MemberID           string
	ClaimStartDate     time.Time
	DrugStrength       string
	DrugProductName    string
	ClaimStatus        string
	RefillCode         string
	DaysSupply         float64
	GenericProductName string
	PharmacyName       string
	PharmacyPhone      string
	MemberAge          int
	HasMemberAge       bool

	Controller bool
	Reliever   bool
}

// CloneFills copies fills so a stage can return new values.
func CloneFills(fills []DrugFill) []DrugFill {
	return append([]DrugFill(nil), fills...)
}
