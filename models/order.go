package models

import (
	"time"

	"github.com/kendall-kelly/aga-grading-api/grading"
	"gorm.io/datatypes"
)

// Order represents one issued grading certificate. Orders are created once at
// issuance and never updated or deleted.
type Order struct {
	ID              uint                                 `gorm:"primaryKey" json:"id"`
	CertificateCode string                               `gorm:"uniqueIndex;not null;size:64" json:"certificate_code"`
	SubmitterName   string                               `json:"submitter_name"`
	SubmitterEmail  string                               `json:"submitter_email"`
	ItemTitle       string                               `gorm:"not null;index" json:"item_title"`
	ServiceTier     string                               `gorm:"not null;default:'standard'" json:"service_tier"` // standard, express, ...
	GradeLabel      string                               `gorm:"not null;index" json:"grade_label"`
	Subgrades       datatypes.JSONType[grading.Subgrades] `json:"subgrades"`
	CreatedAt       time.Time                            `gorm:"not null" json:"created_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// SubgradeScores returns the decoded subgrade map, never nil
func (o *Order) SubgradeScores() grading.Subgrades {
	sub := o.Subgrades.Data()
	if sub == nil {
		return grading.Subgrades{}
	}
	return sub
}
