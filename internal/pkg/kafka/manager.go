package kafka

import (
	"Inkstone/internal/api/config"
	"Inkstone/internal/service"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
)

// ConsumerManager 管理所有 Kafka 消费者
// 死信投递在构造时绑定，消费链路起点就具备兜底出口
type ConsumerManager struct {
	likesConsumer sarama.ConsumerGroup
	likesHandler  sarama.ConsumerGroupHandler
	likesTopic    string

	commentsConsumer sarama.ConsumerGroup
	commentsHandler  sarama.ConsumerGroupHandler
	commentsTopic    string
}

// NewConsumerManager 构造函数
func NewConsumerManager(cfg *config.Config, postSvc service.PostService, producer *EventProducer) (*ConsumerManager, error) {
	saramaCfg := newSaramaConfig(cfg.Kafka)

	deadLetterTopic := cfg.KafkaProducer.DeadLetterTopic
	deadLetter := func(msg *sarama.ConsumerMessage, cause error) {
		headers := make([]sarama.RecordHeader, 0, len(msg.Headers)+2)
		for _, h := range msg.Headers {
			headers = append(headers, *h)
		}
		headers = append(headers,
			sarama.RecordHeader{Key: []byte("origin_topic"), Value: []byte(msg.Topic)},
			sarama.RecordHeader{Key: []byte("error"), Value: []byte(cause.Error())},
		)
		if err := producer.SendRaw(deadLetterTopic, msg.Key, msg.Value, headers); err != nil {
			log.Error("dead letter publish failed",
				"topic", msg.Topic, "offset", msg.Offset, "err", err)
		}
	}

	likesConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaLikesConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}
	likesHandler := NewLikesStatsHandler(postSvc, deadLetter)

	commentsConsumer, err := sarama.NewConsumerGroup(cfg.Kafka.Brokers, cfg.KafkaCommentsConsumer.GroupID, saramaCfg)
	if err != nil {
		return nil, err
	}
	commentsHandler := NewCommentsStatsHandler(postSvc, deadLetter)

	return &ConsumerManager{
		likesConsumer:    likesConsumer,
		likesHandler:     likesHandler,
		likesTopic:       cfg.KafkaLikesConsumer.Topic,
		commentsConsumer: commentsConsumer,
		commentsHandler:  commentsHandler,
		commentsTopic:    cfg.KafkaCommentsConsumer.Topic,
	}, nil
}

// Start 启动所有消费者
func (m *ConsumerManager) Start(ctx context.Context) error {
	go func() {
		log.Info("Likes consumer started", "topic", m.likesTopic)
		for {
			if err := m.likesConsumer.Consume(ctx, []string{m.likesTopic}, m.likesHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	go func() {
		log.Info("Comments consumer started", "topic", m.commentsTopic)
		for {
			if err := m.commentsConsumer.Consume(ctx, []string{m.commentsTopic}, m.commentsHandler); err != nil {
				log.Error("Error from consumer", "err", err)
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()

	<-ctx.Done()
	log.Info("Kafka Manager shutting down...")

	if err := m.likesConsumer.Close(); err != nil {
		log.Error("Failed to close likes consumer", "err", err)
	}
	if err := m.commentsConsumer.Close(); err != nil {
		log.Error("Failed to close comments consumer", "err", err)
	}

	return nil
}
