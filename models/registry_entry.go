package models

import "time"

// RegistryEntry is a collector's public claim on an issued certificate
type RegistryEntry struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CertificateCode string    `gorm:"not null;index;size:64" json:"certificate_code"`
	Order           *Order    `gorm:"foreignKey:CertificateCode;references:CertificateCode" json:"order,omitempty"` // loaded for listings
	DisplayName     string    `gorm:"not null" json:"display_name"`
	Note            string    `gorm:"type:text" json:"note"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName specifies the table name for the RegistryEntry model
func (RegistryEntry) TableName() string {
	return "registry_entries"
}
