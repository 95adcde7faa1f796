package dispatcher

import (
	"strconv"

	"spl-token-indexer-sol/internal/logic/core"
	"spl-token-indexer-sol/internal/mq"
	"spl-token-indexer-sol/internal/utils"
	pkgutils "spl-token-indexer-sol/pkg/utils"
)

const batchVersion = 1

// EventBatch 一个分区内同一 slot 的事件集合，作为单条 Kafka 消息发送
type EventBatch struct {
	Version   int                 `json:"version"`
	Slot      uint64              `json:"slot"`
	Partition int32               `json:"partition"`
	Events    []*core.EventRecord `json:"events"`
}

// BuildEventKafkaJobs 按 tx_id 将事件分配到分区，每个非空分区生成一个 KafkaJob。
// 同一交易的事件总是落在同一分区，且保持原有顺序。
func BuildEventKafkaJobs(
	slot uint64,
	topic string,
	partitions int,
	events []*core.EventRecord,
) ([]*mq.KafkaJob, error) {
	if len(events) == 0 {
		return nil, nil
	}
	if partitions <= 0 {
		partitions = 1
	}

	// 按分区初始化 buckets
	buckets := make([][]*core.EventRecord, partitions)
	capacity := pkgutils.CalcCapPerPartition(len(events), partitions, 10)
	for i := range buckets {
		buckets[i] = make([]*core.EventRecord, 0, capacity)
	}

	for _, evt := range events {
		pid := pkgutils.PartitionHashBytes([]byte(evt.TxID), uint32(partitions))
		buckets[pid] = append(buckets[pid], evt)
	}

	key := []byte(strconv.FormatUint(slot, 10))
	jobs := make([]*mq.KafkaJob, 0, partitions)
	for pid, list := range buckets {
		if len(list) == 0 {
			continue
		}
		value, err := utils.EncodeEvent(utils.EventTypeTokenInstruction, &EventBatch{
			Version:   batchVersion,
			Slot:      slot,
			Partition: int32(pid),
			Events:    list,
		})
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, &mq.KafkaJob{
			Topic:     topic,
			Partition: int32(pid),
			Key:       key,
			Value:     value,
			Headers: map[string]string{
				"slot":        strconv.FormatUint(slot, 10),
				"event_count": strconv.Itoa(len(list)),
			},
		})
	}
	return jobs, nil
}
