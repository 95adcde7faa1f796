package sink

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"spl-token-indexer-sol/internal/config"
	"spl-token-indexer-sol/internal/logic/core"
)

// EventSink 一个 slot 的事件整体发布，返回 nil 表示全部送达
type EventSink interface {
	Publish(ctx context.Context, slot uint64, events []*core.EventRecord) error
	Close() error
}

// NewEventSink 按配置创建输出端
func NewEventSink(c config.SinkConfig, tc config.TimeConfig) (EventSink, error) {
	switch strings.ToLower(c.Type) {
	case "kafka":
		return NewKafkaSink(c.Kafka, tc.EventSendTimeout())
	case "nats":
		return NewNatsSink(natsOption(c.Nats))
	case "stdout":
		return NewStdoutSink(os.Stdout), nil
	default:
		return nil, fmt.Errorf("unknown sink type %q", c.Type)
	}
}

func natsOption(c config.NatsConfig) NatsOption {
	return NatsOption{
		URL:            c.URL,
		Stream:         c.Stream,
		SubjectRoot:    c.SubjectRoot,
		PublishTimeout: time.Duration(c.PublishTimeoutMs) * time.Millisecond,
	}
}
