package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"gesrh/backend/internal/repository"
	"gesrh/backend/pkg/debounce"
)

// PendingEvent 待审批列表变化推送
type PendingEvent struct {
	Type      string `json:"type"`
	Pending   int    `json:"pending"`
	Reason    string `json:"reason"`
	Timestamp string `json:"timestamp"`
}

// PendingFeed 待审批列表实时推送
// 连续的审批操作经去抖合并为一次推送，推送内容为推送时刻的待审批数量
type PendingFeed struct {
	repo   *repository.Repository
	hub    Broadcaster
	deb    *debounce.Debouncer[string]
	logger *zap.Logger
}

// NewPendingFeed 创建推送器；hub 为 nil 时 Notify 为空操作
func NewPendingFeed(repo *repository.Repository, hub Broadcaster, delay time.Duration, logger *zap.Logger) *PendingFeed {
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	f := &PendingFeed{repo: repo, hub: hub, logger: logger}
	f.deb = debounce.New(delay, f.push)
	return f
}

// Notify 记录一次变化
func (f *PendingFeed) Notify(reason string) {
	if f == nil || f.hub == nil {
		return
	}
	f.deb.Set(reason)
}

// Stop 取消尚未推送的变化
func (f *PendingFeed) Stop() {
	if f == nil {
		return
	}
	f.deb.Stop()
}

func (f *PendingFeed) push(reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	regs, err := f.repo.Registration.ListPending(ctx)
	if err != nil {
		f.logger.Warn("统计待审批报名失败", zap.Error(err))
		return
	}

	msg, err := json.Marshal(PendingEvent{
		Type:      "pending_registrations_changed",
		Pending:   len(regs),
		Reason:    reason,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return
	}
	f.hub.Broadcast(msg)
}
