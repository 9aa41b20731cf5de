package model

import "time"

// Comment 评论，可匿名（UserID 为空），作者可回复

type Comment struct {
	ID        uint      `gorm:"primaryKey"`
	PostID    uint      `gorm:"not null;index;comment:所属文章"`
	UserID    *uint     `gorm:"index;comment:评论用户（可空）"`
	Name      string    `gorm:"type:varchar(100);comment:评论者名称"`
	Email     string    `gorm:"type:varchar(100);comment:评论者邮箱"`
	Comment   string    `gorm:"type:text;comment:评论内容"`
	Reply     string    `gorm:"type:text;comment:作者回复"`
	CreatedAt time.Time `gorm:"index;comment:创建时间"`

	Post *Post `gorm:"foreignKey:PostID"`
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
}

// TableName 指定表名
func (Comment) TableName() string { return "comments" }
