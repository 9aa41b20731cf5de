package model

import (
	"time"

	"github.com/gosimple/slug"
	"github.com/lithammer/shortuuid/v4"
	"gorm.io/gorm"
)

// PostStatus 文章状态
type PostStatus string

const (
	PostStatusActive  PostStatus = "Active"
	PostStatusDraft   PostStatus = "Draft"
	PostStatusDisable PostStatus = "Disable"
)

// Valid 判断状态是否合法
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusActive, PostStatusDraft, PostStatusDisable:
		return true
	}
	return false
}

// Post 文章
// Slug 全局唯一：标题 slug + 两位短 uuid 后缀

type Post struct {
	ID          uint       `gorm:"primaryKey"`
	UserID      uint       `gorm:"not null;index;comment:作者"`
	CategoryID  uint       `gorm:"not null;index;default:1;comment:分类"`
	Title       string     `gorm:"type:varchar(255);not null;comment:标题"`
	Image       string     `gorm:"type:varchar(255);comment:封面图"`
	Description string     `gorm:"type:text;comment:正文"`
	Tags        string     `gorm:"type:varchar(255);comment:标签（逗号分隔）"`
	Status      PostStatus `gorm:"type:varchar(16);not null;default:'Active';index;comment:状态"`
	Views       int64      `gorm:"not null;default:0;comment:浏览量"`
	Slug        string     `gorm:"type:varchar(191);not null;uniqueIndex;comment:文章slug"`
	CreatedAt   time.Time  `gorm:"index;comment:创建时间"`

	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
	Comments []Comment `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
}

// TableName 指定表名
func (Post) TableName() string { return "posts" }

// BeforeCreate 补全 slug、状态与分类
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.Slug == "" {
		p.Slug = NewPostSlug(p.Title)
	}
	if p.Status == "" {
		p.Status = PostStatusActive
	}
	if p.CategoryID == 0 {
		p.CategoryID = DefaultCategoryID
	}
	return nil
}

// NewPostSlug 生成文章 slug
func NewPostSlug(title string) string {
	base := slug.Make(title)
	suffix := shortuuid.New()[:2]
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

// PostLike 文章点赞（多对多关联表），复合主键保证同一用户只能点赞一次

type PostLike struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `gorm:"comment:点赞时间"`

	Post *Post `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName 指定表名
func (PostLike) TableName() string { return "post_likes" }
