package kafka

import (
	"Inkstone/internal/api/config"
	"Inkstone/internal/pkg/event"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// EventProducer 领域事件出站，统一写入单一事件 Topic
// 路由键放在消息头，分区键取 post_id，保证同一帖子事件有序
type EventProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewEventProducer(cfg *config.Config) (*EventProducer, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	producer, err := sarama.NewSyncProducer(cfg.Kafka.Brokers, saramaCfg)
	if err != nil {
		return nil, errors.Wrap(err, "创建 kafka producer 失败")
	}

	return &EventProducer{
		producer: producer,
		topic:    cfg.KafkaProducer.Topic,
	}, nil
}

func (p *EventProducer) Publish(ctx context.Context, ev event.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "序列化事件失败")
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.Key()),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("routing_key"), Value: []byte("posts." + ev.Type())},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return errors.Wrap(err, "发送事件失败")
	}

	log.DebugContext(ctx, "event published",
		"event_type", ev.Type(), "key", ev.Key(),
		"partition", partition, "offset", offset)
	return nil
}

// SendRaw 原样转发一条消息，死信投递使用
func (p *EventProducer) SendRaw(topic string, key, value []byte, headers []sarama.RecordHeader) error {
	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.ByteEncoder(key),
		Value:   sarama.ByteEncoder(value),
		Headers: headers,
	}
	_, _, err := p.producer.SendMessage(msg)
	return err
}

func (p *EventProducer) Close() error {
	return p.producer.Close()
}
