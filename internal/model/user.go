package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// DefaultProfileImage 新建资料时使用的默认头像（相对媒体目录）
const DefaultProfileImage = "default/default.user.jpg"

// User 用户模型
// 索引与唯一约束：邮箱唯一（登录标识）、用户名唯一
// 说明：密码仅存储哈希（PasswordHash），不存储明文
// OTP / ResetToken 仅在重置密码流程中暂存，使用后清空

type User struct {
	ID           uint      `gorm:"primaryKey"`
	Email        string    `gorm:"type:varchar(191);not null;uniqueIndex;comment:邮箱"`
	Username     string    `gorm:"type:varchar(100);not null;uniqueIndex;comment:用户名"`
	FullName     string    `gorm:"type:varchar(100);comment:姓名"`
	PasswordHash string    `gorm:"type:varchar(255);not null;comment:密码哈希"`
	OTP          string    `gorm:"type:varchar(16);comment:重置密码验证码"`
	ResetToken   string    `gorm:"type:varchar(1000);comment:重置密码令牌"`
	CreatedAt    time.Time `gorm:"comment:创建时间"`
	UpdatedAt    time.Time `gorm:"comment:更新时间"`

	Profile *Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// BeforeCreate 用户名与姓名缺省时取邮箱@前的部分
func (u *User) BeforeCreate(tx *gorm.DB) error {
	local := EmailLocalPart(u.Email)
	if u.Username == "" {
		u.Username = local
	}
	if u.FullName == "" {
		u.FullName = local
	}
	return nil
}

// EmailLocalPart 返回邮箱@前的部分
func EmailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// Profile 用户资料，与 User 一一对应，由注册流程在同一事务中创建

type Profile struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex;comment:所属用户"`
	Image     string    `gorm:"type:varchar(255);default:'default/default.user.jpg';comment:头像路径"`
	FullName  string    `gorm:"type:varchar(100);comment:姓名"`
	Bio       string    `gorm:"type:varchar(255);comment:简介"`
	About     string    `gorm:"type:text;comment:关于"`
	Author    bool      `gorm:"default:false;comment:是否作者"`
	Country   string    `gorm:"type:varchar(100);comment:国家"`
	Facebook  string    `gorm:"type:varchar(255);comment:Facebook"`
	Twitter   string    `gorm:"type:varchar(255);comment:Twitter"`
	CreatedAt time.Time `gorm:"comment:创建时间"`

	User *User `gorm:"foreignKey:UserID"`
}

// TableName 指定表名
func (Profile) TableName() string { return "profiles" }
