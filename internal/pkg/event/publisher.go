package event

import (
	"context"
)

// Publisher 事件发布能力。消息消费侧注入 NoopPublisher，
// 避免由入站事件触发的更新再次向外发事件形成环路
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

func (p *NoopPublisher) Publish(context.Context, Event) error {
	return nil
}

func (p *NoopPublisher) Close() error {
	return nil
}
