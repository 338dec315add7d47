package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kendall-kelly/aga-grading-api/models"
	"gorm.io/gorm"
)

// RegistryListLimit is the number of entries returned by a registry listing
const RegistryListLimit = 25

// RegistryService stores collectors' public claims on certificates
type RegistryService struct {
	db     *gorm.DB
	orders OrderRepository
}

// NewRegistryService creates a registry service
func NewRegistryService(db *gorm.DB, orders OrderRepository) *RegistryService {
	return &RegistryService{db: db, orders: orders}
}

var registryServiceInstance *RegistryService

// InitRegistryService initializes the registry service
func InitRegistryService(db *gorm.DB, orders OrderRepository) *RegistryService {
	registryServiceInstance = NewRegistryService(db, orders)
	return registryServiceInstance
}

// GetRegistryService returns the initialized registry service instance
func GetRegistryService() *RegistryService {
	return registryServiceInstance
}

// SetRegistryService sets the registry service instance (primarily for testing)
func SetRegistryService(service *RegistryService) {
	registryServiceInstance = service
}

// Add registers displayName as the holder of an existing certificate
func (s *RegistryService) Add(ctx context.Context, code, displayName, note string) (*models.RegistryEntry, error) {
	code = strings.TrimSpace(code)
	displayName = strings.TrimSpace(displayName)
	if code == "" || displayName == "" {
		return nil, fmt.Errorf("%w: certificate code and display name are required", ErrInvalidSubmission)
	}

	if _, err := s.orders.FindByCertificateCode(ctx, code); err != nil {
		return nil, err
	}

	entry := &models.RegistryEntry{
		CertificateCode: code,
		DisplayName:     displayName,
		Note:            strings.TrimSpace(note),
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrCertificateNotFound
		}
		return nil, fmt.Errorf("%w: failed to create registry entry: %v", ErrPersistence, err)
	}
	return entry, nil
}

// Latest returns the newest registry entries with their orders
func (s *RegistryService) Latest(ctx context.Context, limit int) ([]models.RegistryEntry, error) {
	if limit <= 0 || limit > RegistryListLimit {
		limit = RegistryListLimit
	}

	var entries []models.RegistryEntry
	err := s.db.WithContext(ctx).
		Preload("Order").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load registry: %v", ErrPersistence, err)
	}
	return entries, nil
}
