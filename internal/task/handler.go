package task

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fluttertask/butterfly-todo-backend/internal/butterfly"
	"github.com/fluttertask/butterfly-todo-backend/internal/user"
	"github.com/fluttertask/butterfly-todo-backend/pkg/apperr"
	"github.com/gin-gonic/gin"
)

// ButterflyResponse 是嵌在任务响应里的蝴蝶摘要
type ButterflyResponse struct {
	ID            string     `json:"id"`
	Origin        string     `json:"origin"`
	Size          float64    `json:"size"`
	PointsAwarded int        `json:"pointsAwarded"`
	IsCaught      bool       `json:"isCaught"`
	CaughtAt      *time.Time `json:"caughtAt"`
}

// TaskResponse 是任务的API响应模型，蝴蝶始终随任务一起返回
type TaskResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Description *string            `json:"description"`
	DueDate     *time.Time         `json:"dueDate"`
	CompletedAt *time.Time         `json:"completedAt"`
	Size        string             `json:"size"`
	Priority    string             `json:"priority"`
	CreatedAt   time.Time          `json:"createdAt"`
	Butterfly   *ButterflyResponse `json:"butterfly"`
}

func formatTask(t *Task, bf *butterfly.Butterfly) TaskResponse {
	resp := TaskResponse{
		ID:          t.TaskID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		Size:        t.Size,
		Priority:    t.Priority,
		CreatedAt:   t.CreatedAt,
	}
	if bf != nil {
		resp.Butterfly = &ButterflyResponse{
			ID:            bf.ButterflyID,
			Origin:        bf.Origin,
			Size:          bf.Size,
			PointsAwarded: bf.PointsAwarded,
			IsCaught:      bf.IsCaught,
			CaughtAt:      bf.CaughtAt,
		}
	}
	return resp
}

type createTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Size        string     `json:"size"`
	Priority    string     `json:"priority"`
}

// CreateTask 创建一个新任务及其蝴蝶
func CreateTask(c *gin.Context) {
	var body createTaskRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	t, bf, err := Create(user.CurrentUserID(c), CreateInput{
		Title:       body.Title,
		Description: body.Description,
		DueDate:     body.DueDate,
		Size:        body.Size,
		Priority:    body.Priority,
	})
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, formatTask(t, bf))
}

// parsePatch 把请求体解析为UpdateInput，区分"字段缺席"和"显式null"：
// 缺席的字段不进入补丁，显式null清空可空字段。
func parsePatch(raw map[string]json.RawMessage) (UpdateInput, error) {
	var input UpdateInput

	if v, ok := raw["title"]; ok {
		// 标题是必填字段，补丁不允许把它清空
		if string(v) == "null" {
			return input, &apperr.ValidationError{Field: "title", Reason: "不能为null"}
		}
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return input, &apperr.ValidationError{Field: "title", Reason: "必须是字符串"}
		}
		if strings.TrimSpace(s) == "" {
			return input, &apperr.ValidationError{Field: "title", Reason: "不能为空"}
		}
		input.Title = &s
	}
	if v, ok := raw["description"]; ok {
		input.HasDescription = true
		if string(v) != "null" {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return input, &apperr.ValidationError{Field: "description", Reason: "必须是字符串或null"}
			}
			input.Description = &s
		}
	}
	if v, ok := raw["dueDate"]; ok {
		input.HasDueDate = true
		if string(v) != "null" {
			var ts time.Time
			if err := json.Unmarshal(v, &ts); err != nil {
				return input, &apperr.ValidationError{Field: "dueDate", Reason: "必须是RFC3339时间或null"}
			}
			input.DueDate = &ts
		}
	}
	if v, ok := raw["completedAt"]; ok {
		input.HasCompletedAt = true
		if string(v) != "null" {
			var ts time.Time
			if err := json.Unmarshal(v, &ts); err != nil {
				return input, &apperr.ValidationError{Field: "completedAt", Reason: "必须是RFC3339时间或null"}
			}
			input.CompletedAt = &ts
		}
	}

	return input, nil
}

// UpdateTask 对任务应用部分更新，完成转换会在同一事务中入账积分
func UpdateTask(c *gin.Context) {
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	input, err := parsePatch(raw)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	t, bf, err := Update(c.Param("id"), user.CurrentUserID(c), input)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, formatTask(t, bf))
}

// ListTasks 返回当前用户的全部任务，开放的在前
func ListTasks(c *gin.Context) {
	rows, err := List(user.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取任务列表失败"})
		return
	}

	responses := make([]TaskResponse, len(rows))
	for i, row := range rows {
		responses[i] = formatTask(&row.Task, row.Butterfly)
	}
	c.JSON(http.StatusOK, responses)
}

// GetTask 根据ID返回单个任务
func GetTask(c *gin.Context) {
	t, bf, err := Get(c.Param("id"), user.CurrentUserID(c))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, formatTask(t, bf))
}

// DeleteTask 删除任务及其蝴蝶和提醒
func DeleteTask(c *gin.Context) {
	if err := Delete(c.Param("id"), user.CurrentUserID(c)); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "任务已删除"})
}
