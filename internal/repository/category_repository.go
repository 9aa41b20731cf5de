package repository

import (
	"context"

	"blog-backend/internal/model"

	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// withPostCount 附带文章数统计（包含所有状态的文章）
func withPostCount(db *gorm.DB) *gorm.DB {
	return db.Select("categories.*, (SELECT COUNT(*) FROM posts WHERE posts.category_id = categories.id) AS post_count")
}

func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *CategoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := r.db.WithContext(ctx).Scopes(withPostCount).Order("categories.id ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).Scopes(withPostCount).Where("categories.slug = ?", slug).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uint) (*model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).Scopes(withPostCount).Where("categories.id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// EnsureDefault 确保兜底分类存在
func (r *CategoryRepository) EnsureDefault(ctx context.Context) error {
	c := model.Category{ID: model.DefaultCategoryID, Title: "Uncategorized", Slug: "uncategorized"}
	return r.db.WithContext(ctx).Where(model.Category{ID: model.DefaultCategoryID}).FirstOrCreate(&c).Error
}
