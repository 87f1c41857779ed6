package butterfly

import (
	"net/http"

	"github.com/fluttertask/butterfly-todo-backend/internal/user"
	"github.com/fluttertask/butterfly-todo-backend/pkg/apperr"
	"github.com/gin-gonic/gin"
)

// ListButterflies 返回当前用户捕获图鉴（全部蝴蝶，含未捕获）
func ListButterflies(c *gin.Context) {
	rows, err := ListForUser(user.CurrentUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取蝴蝶列表失败"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// GetButterfly 根据ID返回单只蝴蝶
func GetButterfly(c *gin.Context) {
	dto, err := GetForUser(c.Param("id"), user.CurrentUserID(c))
	if err != nil {
		if apperr.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "获取蝴蝶信息失败"})
		}
		return
	}
	c.JSON(http.StatusOK, dto)
}
