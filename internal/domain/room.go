package domain

import "time"

// Room 表示一个雇主和一个自由职业者之间的会话房间。
// 同一对参与者允许存在多个房间（多个命名会话）。
type Room struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	EmployerID   uint      `gorm:"index;not null" json:"employer_id"`   // 雇主用户 ID (外键关联 User.ID)
	FreelancerID uint      `gorm:"index;not null" json:"freelancer_id"` // 自由职业者用户 ID (外键关联 User.ID)
	Name         string    `gorm:"type:varchar(191);not null" json:"name"`
	LastActivity time.Time `gorm:"index" json:"last_activity"` // 最后一条消息的时间，由后台任务更新
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"-"`

	// Employer 在列表查询时按需预加载，用于展示对方身份
	Employer *User `gorm:"foreignKey:EmployerID" json:"employer,omitempty"`
}
