package models

import "time"

// Verification results
const (
	VerifyQualified    = "qualified"
	VerifyInconclusive = "inconclusive"
	VerifyDisqualified = "disqualified"
)

// VerifyResults is the result enum in a fixed order.
var VerifyResults = []string{VerifyQualified, VerifyInconclusive, VerifyDisqualified}

// VerifyRecord is the model for the 'verify_records' table. One record per
// product code (COA).
type VerifyRecord struct {
	ID          string    `json:"id" db:"id"`
	Code        string    `json:"code" db:"code"`
	ProductName *string   `json:"productName,omitempty" db:"product_name"`
	Signatures  int       `json:"signatures" db:"signatures"`
	Result      string    `json:"result" db:"result"`
	IssuedBy    *string   `json:"issuedBy,omitempty" db:"issued_by"`
	Lookups     int64     `json:"lookups" db:"lookups"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// ValidVerifyResult reports whether r is a known result.
func ValidVerifyResult(r string) bool {
	for _, v := range VerifyResults {
		if v == r {
			return true
		}
	}
	return false
}
