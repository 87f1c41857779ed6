package reminder

import (
	"fmt"
	"time"

	"github.com/fluttertask/butterfly-todo-backend/pkg/lifecycle"
)

// defaultScanInterval 是到期提醒扫描的默认周期。
const defaultScanInterval = 30 * time.Second

// StartScanner 启动后台的到期提醒扫描器。
// 它周期性地把到期的提醒标记为已发送，生命周期与传入的句柄绑定，
// 收到停机信号后在当前轮次结束时退出。
func StartScanner(handle *lifecycle.Handle, interval time.Duration) {
	defer handle.Close()

	if interval <= 0 {
		interval = defaultScanInterval
	}
	fmt.Println("提醒扫描器 (Reminder Scanner) 已启动。")

	for {
		if err := handle.Sleep(interval); err != nil {
			fmt.Println("提醒扫描器: 收到停机信号，退出。")
			return
		}

		count, err := MarkDueAsSent(time.Now())
		if err != nil {
			fmt.Printf("提醒扫描器错误: %v\n", err)
			continue
		}
		if count > 0 {
			fmt.Printf("提醒扫描器: 标记了 %d 条到期提醒。\n", count)
		}
	}
}
