package reminder

import (
	"errors"
	"fmt"
	"time"

	"github.com/fluttertask/butterfly-todo-backend/internal/platform/database"
	"github.com/fluttertask/butterfly-todo-backend/pkg/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// taskOwnedBy 校验一个任务是否归属于调用方。
// 走裸表查询而不是task包的模型，避免与task包形成循环依赖。
func taskOwnedBy(db *gorm.DB, taskID, userID string) (bool, error) {
	var count int64
	err := db.Table("tasks").
		Where("task_id = ? AND user_id = ? AND deleted_at IS NULL", taskID, userID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("无法校验任务 %s 的归属: %w", taskID, err)
	}
	return count > 0, nil
}

// CreateInput 是创建提醒的入参。
type CreateInput struct {
	TaskID   string
	RemindAt time.Time
	Message  string
}

// Create 为调用方自己的任务创建一个提醒。
func Create(userID string, input CreateInput) (*Reminder, error) {
	if input.TaskID == "" {
		return nil, &apperr.ValidationError{Field: "taskId", Reason: "不能为空"}
	}
	if input.RemindAt.IsZero() {
		return nil, &apperr.ValidationError{Field: "remindAt", Reason: "不能为空"}
	}

	owned, err := taskOwnedBy(database.DB, input.TaskID, userID)
	if err != nil {
		return nil, err
	}
	if !owned {
		return nil, &apperr.NotFoundError{Resource: "任务", ID: input.TaskID}
	}

	reminderID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("无法生成提醒ID: %w", err)
	}

	r := Reminder{
		ReminderID: reminderID.String(),
		TaskID:     input.TaskID,
		RemindAt:   input.RemindAt,
		Message:    input.Message,
	}
	if err := database.DB.Create(&r).Error; err != nil {
		return nil, fmt.Errorf("无法创建提醒: %w", err)
	}
	return &r, nil
}

// ListForUser 返回调用方全部任务上的提醒。
func ListForUser(userID string) ([]Reminder, error) {
	var reminders []Reminder
	err := database.DB.
		Joins("JOIN tasks ON tasks.task_id = reminders.task_id AND tasks.deleted_at IS NULL").
		Where("tasks.user_id = ?", userID).
		Order("reminders.remind_at ASC").
		Find(&reminders).Error
	if err != nil {
		return nil, fmt.Errorf("无法查询用户 %s 的提醒: %w", userID, err)
	}
	return reminders, nil
}

// GetForUser 返回单个提醒，归属他人的提醒视同不存在。
func GetForUser(reminderID, userID string) (*Reminder, error) {
	var r Reminder
	err := database.DB.
		Joins("JOIN tasks ON tasks.task_id = reminders.task_id AND tasks.deleted_at IS NULL").
		Where("reminders.reminder_id = ? AND tasks.user_id = ?", reminderID, userID).
		First(&r).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &apperr.NotFoundError{Resource: "提醒", ID: reminderID}
		}
		return nil, err
	}
	return &r, nil
}

// Delete 删除一个提醒。
func Delete(reminderID, userID string) error {
	r, err := GetForUser(reminderID, userID)
	if err != nil {
		return err
	}
	return database.DB.Delete(r).Error
}

// MarkDueAsSent 把所有到期且未发送的提醒标记为已发送，返回标记数量。
// 由后台扫描器周期调用。
func MarkDueAsSent(now time.Time) (int64, error) {
	result := database.DB.Model(&Reminder{}).
		Where("sent = ? AND remind_at <= ?", false, now).
		Update("sent", true)
	if result.Error != nil {
		return 0, fmt.Errorf("无法标记到期提醒: %w", result.Error)
	}
	return result.RowsAffected, nil
}
