package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"gorm.io/gorm"
)

// medicineDetailColumns are the columns UpdateDetails may write
var medicineDetailColumns = []string{
	"name", "manufacturer", "category", "batch_number", "expiry_date",
	"price", "gst_rate", "minimum_stock_level", "description", "updated_at",
}

type medicineRepository struct {
	db *gorm.DB
}

// NewMedicineRepository creates a new medicine repository
func NewMedicineRepository(db *gorm.DB) domainRepo.MedicineRepository {
	return &medicineRepository{db: db}
}

func (r *medicineRepository) Create(ctx context.Context, medicine *entity.Medicine) error {
	return translateError(r.db.WithContext(ctx).Create(medicine).Error)
}

func (r *medicineRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Medicine, error) {
	var medicine entity.Medicine
	err := r.db.WithContext(ctx).First(&medicine, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &medicine, err
}

func (r *medicineRepository) GetByBatchNumber(ctx context.Context, batchNumber string) (*entity.Medicine, error) {
	var medicine entity.Medicine
	err := r.db.WithContext(ctx).First(&medicine, "batch_number = ?", batchNumber).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &medicine, err
}

func (r *medicineRepository) UpdateDetails(ctx context.Context, medicine *entity.Medicine) error {
	result := r.db.WithContext(ctx).Model(medicine).
		Select(medicineDetailColumns).
		Updates(medicine)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func (r *medicineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&entity.Medicine{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}

func (r *medicineRepository) List(ctx context.Context, params *domainRepo.MedicineFilterParams) ([]entity.Medicine, int64, error) {
	var medicines []entity.Medicine
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Medicine{})

	if params.Search != "" {
		like := likePattern(params.Search)
		query = query.Where(
			`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(manufacturer) LIKE ? ESCAPE '\' OR LOWER(batch_number) LIKE ? ESCAPE '\'`,
			like, like, like)
	}

	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	if params.LowStock {
		query = query.Where("quantity <= minimum_stock_level")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	col, desc := params.SortColumn()
	order := col + " ASC"
	if desc {
		order = col + " DESC"
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Order(order).Order("id ASC").
		Find(&medicines).Error

	return medicines, total, err
}

func (r *medicineRepository) ListAll(ctx context.Context) ([]entity.Medicine, error) {
	var medicines []entity.Medicine
	err := r.db.WithContext(ctx).Order("name ASC").Find(&medicines).Error
	return medicines, err
}

func (r *medicineRepository) ListLowStock(ctx context.Context, limit int) ([]entity.Medicine, error) {
	var medicines []entity.Medicine
	query := r.db.WithContext(ctx).
		Where("quantity <= minimum_stock_level").
		Order("quantity ASC").Order("name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&medicines).Error
	return medicines, err
}

// AtomicDecrementQuantity atomically decrements stock only if sufficient quantity exists.
// Uses: UPDATE medicines SET quantity = quantity - amount WHERE id = ? AND quantity >= amount
func (r *medicineRepository) AtomicDecrementQuantity(ctx context.Context, id uuid.UUID, amount int) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.Medicine{}).
		Where("id = ? AND quantity >= ?", id, amount).
		Update("quantity", gorm.Expr("quantity - ?", amount))

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *medicineRepository) IncrementQuantity(ctx context.Context, id uuid.UUID, amount int) error {
	result := r.db.WithContext(ctx).Model(&entity.Medicine{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", amount))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainRepo.ErrNotFound
	}
	return nil
}
