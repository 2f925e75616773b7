// Package domain 定义了应用程序中使用的数据结构 (数据库模型)。
package domain

import "time"

// 用户角色常量。
const (
	RoleEmployer   = "employer"
	RoleFreelancer = "freelancer"
)

// User 表示平台上的一个用户（雇主或自由职业者）。
// 在线状态是 Hub 的派生状态，不属于持久化模型。
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(191);uniqueIndex:idx_username;not null" json:"username"`
	Password  string    `gorm:"type:text;not null" json:"-"` // 存储的是哈希后的密码，不能为空
	Email     string    `gorm:"type:varchar(191);uniqueIndex:idx_email" json:"email,omitempty"`
	Role      string    `gorm:"type:varchar(20);index;not null" json:"role"` // "employer" | "freelancer"
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}
