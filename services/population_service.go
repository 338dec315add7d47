package services

import (
	"context"
	"fmt"

	"github.com/kendall-kelly/aga-grading-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PopulationRegistry keeps the number of certificates issued per (title, grade)
type PopulationRegistry interface {
	Increment(ctx context.Context, title, grade string) error
	Counts(ctx context.Context, title string) (map[string]int64, error)
	Report(ctx context.Context) ([]models.PopulationCount, error)
}

// PopulationService implements PopulationRegistry on gorm
type PopulationService struct {
	db *gorm.DB
}

// NewPopulationService creates a population service on db
func NewPopulationService(db *gorm.DB) *PopulationService {
	return &PopulationService{db: db}
}

var populationServiceInstance PopulationRegistry

// InitPopulationService initializes the population service
func InitPopulationService(db *gorm.DB) PopulationRegistry {
	populationServiceInstance = NewPopulationService(db)
	return populationServiceInstance
}

// GetPopulationService returns the initialized population service instance
func GetPopulationService() PopulationRegistry {
	return populationServiceInstance
}

// SetPopulationService sets the population service instance (primarily for testing)
func SetPopulationService(service PopulationRegistry) {
	populationServiceInstance = service
}

// Increment adds one to the count for (title, grade), creating it on first use
func (s *PopulationService) Increment(ctx context.Context, title, grade string) error {
	if err := incrementPopulation(s.db.WithContext(ctx), title, grade); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// Counts returns the quantity per grade for title. Grades never issued for
// the title are absent rather than zero.
func (s *PopulationService) Counts(ctx context.Context, title string) (map[string]int64, error) {
	var rows []models.PopulationCount
	if err := s.db.WithContext(ctx).Where("item_title = ?", title).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to load population counts: %v", ErrPersistence, err)
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.GradeLabel] = row.Quantity
	}
	return counts, nil
}

// Report returns every population row ordered by title and grade
func (s *PopulationService) Report(ctx context.Context) ([]models.PopulationCount, error) {
	var rows []models.PopulationCount
	if err := s.db.WithContext(ctx).Order("item_title, grade_label").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to load population report: %v", ErrPersistence, err)
	}
	return rows, nil
}

// incrementPopulation is a single upsert statement, so concurrent increments
// of the same key cannot lose updates. tx may be a transaction.
func incrementPopulation(tx *gorm.DB, title, grade string) error {
	row := models.PopulationCount{ItemTitle: title, GradeLabel: grade, Quantity: 1}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "item_title"}, {Name: "grade_label"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("population_counts.quantity + 1"),
		}),
	}).Create(&row).Error
}
