package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/kendall-kelly/aga-grading-api/grading"
	"github.com/kendall-kelly/aga-grading-api/models"
	"gorm.io/gorm"
)

// OrderRepository persists issued orders
type OrderRepository interface {
	// CreateIssued inserts the order and increments its population count in
	// one transaction. A taken certificate code returns ErrDuplicateCertificate.
	CreateIssued(ctx context.Context, order *models.Order) error
	FindByCertificateCode(ctx context.Context, code string) (*models.Order, error)
	Recent(ctx context.Context, limit int) ([]models.Order, error)
	Stats(ctx context.Context) (*OrderStats, error)
}

// OrderStats summarizes issued certificates
type OrderStats struct {
	Total int64 `json:"total"`
	Gem10 int64 `json:"gem10"`
}

// OrderStore implements OrderRepository on gorm
type OrderStore struct {
	db *gorm.DB
}

// NewOrderStore creates an order store on db. The db must be opened with
// TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

var orderStoreInstance OrderRepository

// InitOrderStore initializes the order store
func InitOrderStore(db *gorm.DB) OrderRepository {
	orderStoreInstance = NewOrderStore(db)
	return orderStoreInstance
}

// GetOrderStore returns the initialized order store instance
func GetOrderStore() OrderRepository {
	return orderStoreInstance
}

// SetOrderStore sets the order store instance (primarily for testing)
func SetOrderStore(store OrderRepository) {
	orderStoreInstance = store
}

// CreateIssued inserts order and increments the (title, grade) population atomically
func (s *OrderStore) CreateIssued(ctx context.Context, order *models.Order) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		return incrementPopulation(tx, order.ItemTitle, order.GradeLabel)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", ErrDuplicateCertificate, order.CertificateCode)
	}
	return fmt.Errorf("%w: failed to create order: %v", ErrPersistence, err)
}

// FindByCertificateCode looks up an order by its certificate code
func (s *OrderStore) FindByCertificateCode(ctx context.Context, code string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Where("certificate_code = ?", code).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCertificateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load order: %v", ErrPersistence, err)
	}
	return &order, nil
}

// Recent returns the latest orders, newest first
func (s *OrderStore) Recent(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to load recent orders: %v", ErrPersistence, err)
	}
	return orders, nil
}

// Stats counts all orders and the top-grade ones
func (s *OrderStore) Stats(ctx context.Context) (*OrderStats, error) {
	var stats OrderStats
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Order{}).Count(&stats.Total).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to count orders: %v", ErrPersistence, err)
	}
	if err := db.Model(&models.Order{}).Where("grade_label = ?", string(grading.GradeGem10)).Count(&stats.Gem10).Error; err != nil {
		return nil, fmt.Errorf("%w: failed to count orders: %v", ErrPersistence, err)
	}
	return &stats, nil
}
