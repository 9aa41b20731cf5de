package model

import (
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// DefaultCategoryID 未指定分类时使用的兜底分类
const DefaultCategoryID uint = 1

// Category 文章分类
// PostCount 为只读统计字段，由查询时的子查询填充，不落库

type Category struct {
	ID    uint   `gorm:"primaryKey"`
	Title string `gorm:"type:varchar(100);not null;comment:分类名称"`
	Image string `gorm:"type:varchar(255);comment:分类图片"`
	Slug  string `gorm:"type:varchar(191);not null;uniqueIndex;comment:分类slug"`

	PostCount int64 `gorm:"->;-:migration"`
}

// TableName 指定表名
func (Category) TableName() string { return "categories" }

// BeforeCreate 未指定 slug 时由标题生成
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.Slug == "" {
		c.Slug = slug.Make(c.Title)
	}
	return nil
}
