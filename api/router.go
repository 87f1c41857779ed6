package api

import (
	"github.com/fluttertask/butterfly-todo-backend/internal/butterfly"
	"github.com/fluttertask/butterfly-todo-backend/internal/reminder"
	"github.com/fluttertask/butterfly-todo-backend/internal/shop"
	"github.com/fluttertask/butterfly-todo-backend/internal/task"
	"github.com/fluttertask/butterfly-todo-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 集中定义了所有的API路由。
// 所有业务路由都要求携带 X-User-ID 头，由用户中间件统一校验并激活用户。
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	api.Use(user.RequireUserMiddleware())
	{
		tasks := api.Group("/tasks")
		{
			tasks.POST("", task.CreateTask)
			tasks.GET("", task.ListTasks)
			tasks.GET("/:id", task.GetTask)
			tasks.PATCH("/:id", task.UpdateTask)
			tasks.DELETE("/:id", task.DeleteTask)
		}

		butterflies := api.Group("/butterflies")
		{
			butterflies.GET("", butterfly.ListButterflies)
			butterflies.GET("/:id", butterfly.GetButterfly)
		}

		shopItems := api.Group("/shop-items")
		{
			shopItems.POST("", shop.CreateShopItem)
			shopItems.GET("", shop.ListShopItems)
			shopItems.GET("/:id", shop.GetShopItem)
			shopItems.POST("/:id/purchase", shop.PurchaseShopItem)
			shopItems.DELETE("/:id", shop.DeleteShopItem)
		}

		reminders := api.Group("/reminders")
		{
			reminders.POST("", reminder.CreateReminder)
			reminders.GET("", reminder.ListReminders)
			reminders.GET("/:id", reminder.GetReminder)
			reminders.DELETE("/:id", reminder.DeleteReminder)
		}

		users := api.Group("/users")
		{
			users.GET("/me", user.GetMe)
			users.PATCH("/me", user.UpdateMe)
			users.GET("/leaderboard", user.GetLeaderboard)
		}
	}
}
