package shutdown

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fluttertask/butterfly-todo-backend/pkg/lifecycle"
)

const (
	httpDrainTimeout = 15 * time.Second
	serviceTimeout   = 30 * time.Second
)

// Coordinator 负责编排应用程序的优雅停机流程：
// 先放空HTTP服务器，再等待后台服务在限期内退出。
type Coordinator struct {
	manager *lifecycle.Manager
}

// NewCoordinator 创建一个新的停机协调器。
func NewCoordinator(manager *lifecycle.Manager) *Coordinator {
	return &Coordinator{manager: manager}
}

// ListenForSignalsAndShutdown 启动信号监听并阻塞，直到停机流程完成。
func (c *Coordinator) ListenForSignalsAndShutdown(server *http.Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 阻塞直到接收到停机信号
	<-sigChan
	fmt.Println("\n收到关闭信号，开始优雅停机...")

	// 关闭HTTP服务器，允许正在进行的请求完成。
	// 进行中的事务要么在此窗口内提交，要么随进程退出整体回滚，
	// 不会出现半生效的状态。
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), httpDrainTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Printf("Gin服务器关闭错误: %v\n", err)
	} else {
		fmt.Println("Gin服务器已关闭。")
	}

	// 通知后台服务退出并等待
	c.manager.Shutdown()
	remaining := c.manager.WaitWithTimeout(serviceTimeout)
	if len(remaining) == 0 {
		fmt.Println("所有后台服务已优雅关闭。")
	} else {
		fmt.Printf("停机超时：服务 %v 未在 %v 内退出，强制退出进程。\n", remaining, serviceTimeout)
	}

	fmt.Println("优雅停机完成。")
}
