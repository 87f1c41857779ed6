package database

import (
	"errors"
	"strings"
	"time"

	"github.com/fluttertask/butterfly-todo-backend/pkg/apperr"
	sqlite3 "github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

const (
	txMaxAttempts  = 3
	txInitialDelay = 8 * time.Millisecond
)

// IsConflictError 判断一个错误是否是存储层的瞬时争用错误。
// SQLite在并发写事务下会返回busy/locked，PostgreSQL在可串行化
// 冲突和死锁时返回40001/40P01。
func IsConflictError(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}

	msg := err.Error()
	if strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked") {
		return true
	}
	// PostgreSQL: serialization_failure / deadlock_detected
	if strings.Contains(msg, "SQLSTATE 40001") || strings.Contains(msg, "SQLSTATE 40P01") {
		return true
	}
	return false
}

// RunInTransaction 在GORM事务中执行fn，遇到瞬时争用错误时
// 以指数退避重试有限次数。业务错误不会被重试，原样返回。
// 重试耗尽后包装为apperr.ConflictError，调用方可以安全地整体重试。
func RunInTransaction(fn func(tx *gorm.DB) error) error {
	delay := txInitialDelay

	var err error
	for attempt := 1; attempt <= txMaxAttempts; attempt++ {
		err = DB.Transaction(fn)
		if err == nil || !IsConflictError(err) {
			return err
		}
		if attempt < txMaxAttempts {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return &apperr.ConflictError{Err: err}
}
