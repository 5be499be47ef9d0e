package mysql

import (
	"context"

	"gorm.io/gorm"
)

// TxManager 事务管理器
// 设计说明:
// 1. 封装GORM的Transaction方法
// 2. 通过context传递事务DB,Repository的getDB从context提取
// 3. 嵌套事务时GORM自动使用Savepoint
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
// fn内所有Repository操作在同一事务中执行;
// fn返回error自动ROLLBACK,返回nil自动COMMIT。
//
// 归还的用法:
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    // 1. 条件状态更新(ACTIVE→COMPLETED)
//	    if err := loanRepo.UpdateStatus(ctx, id, loan.StatusActive, loan.StatusCompleted, l); err != nil {
//	        return err
//	    }
//	    // 2. 放回副本
//	    return bookRepo.ReleaseCopy(ctx, l.BookID) // nil提交,非nil回滚
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := context.WithValue(ctx, "tx", tx)
		return fn(txCtx)
	})
}
