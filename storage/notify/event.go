// Package notify 在仓储写操作成功后发布变更事件
//
// 发布失败只记录日志，不影响写操作的返回值（写入已经生效）。
package notify

import (
	"context"
	"sync"
	"time"
)

// EventType 变更类型
type EventType string

const (
	EventInserted EventType = "entity.inserted"
	EventUpdated  EventType = "entity.updated"
	EventDeleted  EventType = "entity.deleted"
)

// ChangeEvent 实体变更事件
type ChangeEvent struct {
	Type       EventType      `json:"type"`
	EntityID   string         `json:"entityId"`
	Entity     map[string]any `json:"entity,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// Publisher 事件发布者
type Publisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
}

// PublisherFunc 函数适配器
type PublisherFunc func(ctx context.Context, event ChangeEvent) error

func (f PublisherFunc) Publish(ctx context.Context, event ChangeEvent) error {
	return f(ctx, event)
}

// Recorder 记录全部事件的发布者，用于测试与本地调试
type Recorder struct {
	mu     sync.Mutex
	events []ChangeEvent
}

func (r *Recorder) Publish(_ context.Context, event ChangeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events 已记录事件的副本
func (r *Recorder) Events() []ChangeEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ChangeEvent, len(r.events))
	copy(out, r.events)
	return out
}
