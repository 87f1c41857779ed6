package user

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fluttertask/butterfly-todo-backend/pkg/apperr"
	"github.com/gin-gonic/gin"
)

// ProfileResponse 是用户画像的API响应模型
type ProfileResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"createdAt"`
}

func formatProfile(u *User) ProfileResponse {
	return ProfileResponse{
		ID:        u.UserID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Points:    u.Points,
		CreatedAt: u.CreatedAt,
	}
}

// GetMe 返回当前用户的画像和积分余额
func GetMe(c *gin.Context) {
	u, err := GetProfile(CurrentUserID(c))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, formatProfile(u))
}

type updateMeRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// UpdateMe 更新当前用户的姓名字段
func UpdateMe(c *gin.Context) {
	var body updateMeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	u, err := UpdateProfile(CurrentUserID(c), UpdateProfileInput{
		FirstName: body.FirstName,
		LastName:  body.LastName,
	})
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, formatProfile(u))
}

// GetLeaderboard 返回积分排行榜，limit为可选的查询参数
func GetLeaderboard(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit必须是1到100之间的整数"})
			return
		}
		limit = parsed
	}

	entries, err := Leaderboard(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取排行榜数据失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries, "totalUsers": len(entries)})
}
