package sink

import (
	"context"
	"fmt"
	"time"

	"spl-token-indexer-sol/internal/config"
	"spl-token-indexer-sol/internal/logic/core"
	"spl-token-indexer-sol/internal/logic/dispatcher"
	"spl-token-indexer-sol/internal/mq"
	"spl-token-indexer-sol/pkg/logger"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

const defaultFlushTimeoutMs = 5000

type KafkaSink struct {
	producer    *kafka.Producer
	cfg         config.KafkaProducerConfig
	sendTimeout time.Duration
}

func NewKafkaSink(cfg config.KafkaProducerConfig, sendTimeout time.Duration) (*KafkaSink, error) {
	producer, err := mq.NewKafkaProducer(cfg.ToKafkaOption())
	if err != nil {
		return nil, err
	}
	return &KafkaSink{producer: producer, cfg: cfg, sendTimeout: sendTimeout}, nil
}

func (s *KafkaSink) Publish(ctx context.Context, slot uint64, events []*core.EventRecord) error {
	jobs, err := dispatcher.BuildAllKafkaJobs(slot, events, s.cfg)
	if err != nil {
		return fmt.Errorf("build kafka jobs: %w", err)
	}
	if len(jobs) == 0 {
		return nil
	}

	ok, failed := mq.SendKafkaJobs(ctx, s.producer, jobs, s.sendTimeout)
	if len(failed) > 0 {
		for _, f := range failed {
			logger.Warnf("[KafkaSink] slot %d partition %d 发送失败: %v", slot, f.Job.Partition, f.Err)
		}
		return fmt.Errorf("slot %d: %d/%d kafka jobs failed: %w", slot, len(failed), len(jobs), failed[0].Err)
	}
	logger.Debugf("[KafkaSink] slot %d 发送完成, jobs=%d, events=%d", slot, len(ok), len(events))
	return nil
}

func (s *KafkaSink) Close() error {
	if remain := s.producer.Flush(defaultFlushTimeoutMs); remain > 0 {
		logger.Warnf("[KafkaSink] flush 超时, 剩余 %d 条未送达", remain)
	}
	s.producer.Close()
	return nil
}
