// Package errors 存放跨层共享的哨兵错误
// 各业务模块自己的错误定义在 service 包内
package errors

import "errors"

var (
	// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
	ErrOptimisticLock = errors.New("la fiche a été modifiée entre-temps, veuillez recharger")
	// ErrConflict 唯一约束冲突（仓储层将 gorm.ErrDuplicatedKey 翻译为该错误）
	ErrConflict = errors.New("ressource déjà existante")
	// ErrCacheMiss 缓存未命中
	ErrCacheMiss = errors.New("cache miss")
)
