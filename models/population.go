package models

// PopulationCount is the running tally of certificates per (title, grade)
type PopulationCount struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	ItemTitle  string `gorm:"not null;uniqueIndex:idx_population_title_grade" json:"item_title"`
	GradeLabel string `gorm:"not null;uniqueIndex:idx_population_title_grade" json:"grade_label"`
	Quantity   int64  `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
}

// TableName specifies the table name for the PopulationCount model
func (PopulationCount) TableName() string {
	return "population_counts"
}
