package butterfly

import (
	"fmt"
	"time"

	"github.com/fluttertask/butterfly-todo-backend/internal/platform/database"
	"github.com/fluttertask/butterfly-todo-backend/pkg/apperr"
)

// CaughtDTO 是蝴蝶查询接口返回的数据，附带所属任务的摘要。
// 蝴蝶的创建和捕获完全由task模块负责，这里只读。
type CaughtDTO struct {
	ButterflyID   string     `json:"id"`
	Origin        string     `json:"origin"`
	Size          float64    `json:"size"`
	PointsAwarded int        `json:"pointsAwarded"`
	IsCaught      bool       `json:"isCaught"`
	CaughtAt      *time.Time `json:"caughtAt"`
	TaskID        string     `json:"taskId"`
	TaskTitle     string     `json:"taskTitle"`
}

// 跨表查询不走GORM的模型关联，以免butterfly反向依赖task包。
const selectColumns = "butterflies.butterfly_id, butterflies.origin, butterflies.size, " +
	"butterflies.points_awarded, butterflies.is_caught, butterflies.caught_at, " +
	"butterflies.task_id, tasks.title AS task_title"

// ListForUser 返回一个用户所有任务的蝴蝶，附带任务标题。
func ListForUser(userID string) ([]CaughtDTO, error) {
	var rows []CaughtDTO
	err := database.DB.Table("butterflies").
		Select(selectColumns).
		Joins("JOIN tasks ON tasks.task_id = butterflies.task_id AND tasks.deleted_at IS NULL").
		Where("tasks.user_id = ? AND butterflies.deleted_at IS NULL", userID).
		Order("butterflies.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("无法查询用户 %s 的蝴蝶列表: %w", userID, err)
	}
	if rows == nil {
		rows = []CaughtDTO{}
	}
	return rows, nil
}

// GetForUser 返回单只蝴蝶。不属于调用方的蝴蝶与不存在的蝴蝶
// 返回同样的NotFoundError，防止探测。
func GetForUser(butterflyID, userID string) (*CaughtDTO, error) {
	var rows []CaughtDTO
	err := database.DB.Table("butterflies").
		Select(selectColumns).
		Joins("JOIN tasks ON tasks.task_id = butterflies.task_id AND tasks.deleted_at IS NULL").
		Where("butterflies.butterfly_id = ? AND tasks.user_id = ? AND butterflies.deleted_at IS NULL", butterflyID, userID).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("无法查询蝴蝶 %s: %w", butterflyID, err)
	}
	if len(rows) == 0 {
		return nil, &apperr.NotFoundError{Resource: "蝴蝶", ID: butterflyID}
	}
	return &rows[0], nil
}
