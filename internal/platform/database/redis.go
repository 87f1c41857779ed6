package database

import (
	"context"
	"fmt"

	"github.com/fluttertask/butterfly-todo-backend/internal/platform/config"
	"github.com/redis/go-redis/v9"
)

// RDB 是一个全局的Redis客户端实例，供项目其他部分使用。
// 当配置中没有Redis地址时，RDB保持为nil，缓存层被整体禁用。
var RDB *redis.Client

// Ctx 是一个全局的上下文，用于Redis操作
var Ctx = context.Background()

// InitRedis 初始化与Redis数据库的连接。
// 返回是否启用了Redis。连接失败会panic，配置为空则静默禁用。
func InitRedis(cfg config.RedisConfig) bool {
	if cfg.Address == "" {
		fmt.Println("未配置Redis地址，排行榜缓存已禁用。")
		MarkRedisDisabled()
		return false
	}

	RDB = redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// 使用Ping命令来测试连接是否成功
	_, err := RDB.Ping(Ctx).Result()
	if err != nil {
		panic("无法连接到Redis: " + err.Error())
	}

	fmt.Println("Redis 连接成功！")
	return true
}
