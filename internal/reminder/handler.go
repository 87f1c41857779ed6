package reminder

import (
	"net/http"
	"time"

	"github.com/fluttertask/butterfly-todo-backend/internal/user"
	"github.com/fluttertask/butterfly-todo-backend/pkg/apperr"
	"github.com/gin-gonic/gin"
)

// ReminderResponse 是提醒的API响应模型
type ReminderResponse struct {
	ID       string    `json:"id"`
	TaskID   string    `json:"taskId"`
	RemindAt time.Time `json:"remindAt"`
	Message  string    `json:"message"`
	Sent     bool      `json:"sent"`
}

func formatReminder(r *Reminder) ReminderResponse {
	return ReminderResponse{
		ID:       r.ReminderID,
		TaskID:   r.TaskID,
		RemindAt: r.RemindAt,
		Message:  r.Message,
		Sent:     r.Sent,
	}
}

type createReminderRequest struct {
	TaskID   string    `json:"taskId" binding:"required"`
	RemindAt time.Time `json:"remindAt" binding:"required"`
	Message  string    `json:"message"`
}

// CreateReminder 为自己的任务创建一个提醒
func CreateReminder(c *gin.Context) {
	var body createReminderRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	r, err := Create(user.CurrentUserID(c), CreateInput{
		TaskID:   body.TaskID,
		RemindAt: body.RemindAt,
		Message:  body.Message,
	})
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, formatReminder(r))
}

// ListReminders 返回当前用户全部任务上的提醒
func ListReminders(c *gin.Context) {
	reminders, err := ListForUser(user.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取提醒列表失败"})
		return
	}

	responses := make([]ReminderResponse, len(reminders))
	for i := range reminders {
		responses[i] = formatReminder(&reminders[i])
	}
	c.JSON(http.StatusOK, responses)
}

// GetReminder 根据ID返回单个提醒
func GetReminder(c *gin.Context) {
	r, err := GetForUser(c.Param("id"), user.CurrentUserID(c))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, formatReminder(r))
}

// DeleteReminder 删除一个提醒
func DeleteReminder(c *gin.Context) {
	if err := Delete(c.Param("id"), user.CurrentUserID(c)); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "提醒已删除"})
}
