package config

import (
	"fmt"
	"strings"
	"time"

	"spl-token-indexer-sol/internal/mq"
	"spl-token-indexer-sol/internal/types"
	"spl-token-indexer-sol/pkg/logger"
)

type LogConfig struct {
	Format   string `json:"format,default=console"` // 日志格式，支持 "console" 或 "json"
	LogDir   string `json:"log_dir,optional"`       // 日志目录（可为相对路径或绝对路径），为空只输出 stdout
	Level    string `json:"level,default=info"`     // 日志级别：debug / info / warn / error
	Compress bool   `json:"compress,optional"`      // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// IndexerConfig 解析相关配置
type IndexerConfig struct {
	TargetProgram string `json:"target_program,default=TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"` // 目标 program
	Workers       int    `json:"workers,optional"`                                                  // 交易级并发数，0 表示 CPU 数 + 2

	Compat struct {
		// 兼容历史数据的位置字段（block_slot 取 parent_slot，下标取 program_id_index）
		LegacyPositions bool `json:"legacy_positions,default=true"`
	} `json:"compat,optional"`
}

// RedisConfig 地址表与进度共用
type RedisConfig struct {
	Addr     string `json:"addr,optional"` // 为空时地址表使用内存仓库、不记录进度
	Password string `json:"password,optional"`
	DB       int    `json:"db,optional"`
}

// KafkaProducerConfig 表示 Kafka 生产者相关配置
type KafkaProducerConfig struct {
	Brokers   string `json:"brokers"`             // Kafka broker 地址，多个用英文逗号分隔
	BatchSize int    `json:"batch_size,optional"` // 批处理大小（单位字节）
	LingerMs  int    `json:"linger_ms,default=5"` // 批处理最大延迟（毫秒）

	Topics struct {
		Event string `json:"event,default=spl-token-events"` // 事件 topic
	} `json:"topics,optional"`

	Partitions struct {
		Event int `json:"event,default=8"` // event topic 的分区数
	} `json:"partitions,optional"`
}

func (c *KafkaProducerConfig) ToKafkaOption() mq.KafkaProducerOption {
	return mq.KafkaProducerOption{
		Brokers:   c.Brokers,
		BatchSize: c.BatchSize,
		LingerMs:  c.LingerMs,
		Topics: []mq.TopicOption{
			{Topic: c.Topics.Event, Partitions: c.Partitions.Event},
		},
	}
}

// NatsConfig JetStream 输出配置
type NatsConfig struct {
	URL              string `json:"url,optional"`
	Stream           string `json:"stream,default=SPLTOKEN"`
	SubjectRoot      string `json:"subject_root,default=spl.token"`
	PublishTimeoutMs int    `json:"publish_timeout_ms,default=5000"`
}

// SinkConfig 事件输出方式
type SinkConfig struct {
	Type  string              `json:"type,default=kafka,options=kafka|nats|stdout"`
	Kafka KafkaProducerConfig `json:"kafka,optional"`
	Nats  NatsConfig          `json:"nats,optional"`
}

// TimeConfig 表示各种超时配置（单位：毫秒）
type TimeConfig struct {
	SlotDispatchTimeoutMs int `json:"slot_dispatch_timeout_ms,default=3000"` // 每个 slot 的处理最大耗时（解析 + 发送 + Redis）
	EventSendTimeoutMs    int `json:"event_send_timeout_ms,default=1500"`    // 单条消息发送并等待 ack 的超时时间
}

func (c TimeConfig) SlotDispatchTimeout() time.Duration {
	return time.Duration(c.SlotDispatchTimeoutMs) * time.Millisecond
}

func (c TimeConfig) EventSendTimeout() time.Duration {
	return time.Duration(c.EventSendTimeoutMs) * time.Millisecond
}

// GrpcConfig 是主配置结构体，用于驱动索引器服务
type GrpcConfig struct {
	LogConf     LogConfig     `json:"logger"`
	IndexerConf IndexerConfig `json:"indexer"`
	RedisConf   RedisConfig   `json:"redis,optional"`
	SinkConf    SinkConfig    `json:"sink"`
	TimeConf    TimeConfig    `json:"time_conf,optional"`

	ProgressConf struct {
		TTLHours int `json:"ttl_hours,default=72"` // slot 处理标记的保留时长
	} `json:"progress,optional"`

	// 用于 getBlocks 漏块检测与地址表补全，为空时不启用
	RpcEndpoint string `json:"rpc_endpoint,optional"`

	// Prometheus 指标监听地址，如 ":9090"，为空时不启动
	MetricsAddr string `json:"metrics_addr,optional"`

	// gRPC 客户端连接相关配置
	Grpc struct {
		Endpoint string `json:"endpoint"`         // gRPC 服务端地址
		XToken   string `json:"x_token,optional"` // x-token 认证

		// 应用级逻辑心跳（ping）配置
		StreamPingIntervalSec int `json:"stream_ping_interval_sec,default=10"`

		// gRPC Keepalive 底层连接检测配置
		KeepalivePingIntervalSec int `json:"keepalive_ping_interval_sec,default=15"`
		KeepalivePingTimeoutSec  int `json:"keepalive_ping_timeout_sec,default=5"`

		// gRPC 窗口大小调优（用于大数据流推送）
		InitialWindowSize     int `json:"initial_window_size,default=1073741824"`
		InitialConnWindowSize int `json:"initial_conn_window_size,default=1073741824"`

		// 消息体大小限制
		MaxCallSendMsgSize int `json:"max_call_send_msg_size,default=67108864"`
		MaxCallRecvMsgSize int `json:"max_call_recv_msg_size,default=67108864"`

		// 超时与重连策略
		ReconnectIntervalSec int `json:"reconnect_interval_sec,default=3"`
		ConnectTimeoutSec    int `json:"connect_timeout_sec,default=10"`
		SendTimeoutSec       int `json:"send_timeout_sec,default=5"`
		BlockRecvTimeoutSec  int `json:"block_recv_timeout_sec,default=30"` // 超过该时间未收到 block 触发重连
	} `json:"grpc"`
}

// Validate 加载后的业务校验
func (c *GrpcConfig) Validate() error {
	if _, err := types.TryPubkeyFromBase58(c.IndexerConf.TargetProgram); err != nil {
		return fmt.Errorf("indexer.target_program: %w", err)
	}
	switch strings.ToLower(c.SinkConf.Type) {
	case "kafka":
		if c.SinkConf.Kafka.Brokers == "" {
			return fmt.Errorf("sink.kafka.brokers is required")
		}
	case "nats":
		if c.SinkConf.Nats.URL == "" {
			return fmt.Errorf("sink.nats.url is required")
		}
	case "stdout":
	default:
		return fmt.Errorf("unknown sink type %q", c.SinkConf.Type)
	}
	return nil
}
