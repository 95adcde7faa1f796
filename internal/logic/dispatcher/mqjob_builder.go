package dispatcher

import (
	"spl-token-indexer-sol/internal/config"
	"spl-token-indexer-sol/internal/logic/core"
	"spl-token-indexer-sol/internal/mq"
)

// BuildAllKafkaJobs 构建一个 slot 的全部 KafkaJob。
// 构建后的 []*mq.KafkaJob 可直接传入 mq.SendKafkaJobs 发送。
func BuildAllKafkaJobs(
	slot uint64,
	events []*core.EventRecord,
	cfg config.KafkaProducerConfig,
) ([]*mq.KafkaJob, error) {
	return BuildEventKafkaJobs(slot, cfg.Topics.Event, cfg.Partitions.Event, events)
}
