package reminder

import (
	"time"

	"gorm.io/gorm"
)

// Reminder 定义了任务提醒的持久化模型。
// 提醒随所属任务一起被删除（由task模块在同一事务中处理）。
type Reminder struct {
	gorm.Model

	// ReminderID 是提醒的业务主键（UUID）。
	ReminderID string `gorm:"uniqueIndex;type:varchar(36);not null"`

	// TaskID 指向所属任务的业务主键。
	TaskID string `gorm:"index;type:varchar(36);not null"`

	// RemindAt 是提醒的触发时间。
	RemindAt time.Time `gorm:"index"`

	// Message 是提醒的展示文案，为空时由前端用任务标题代替。
	Message string

	// Sent 由后台扫描器在提醒到期后置为true。
	Sent bool `gorm:"not null;default:false"`
}
