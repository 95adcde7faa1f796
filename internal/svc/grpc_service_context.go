package svc

import (
	"context"
	"fmt"
	"time"

	"spl-token-indexer-sol/internal/config"
	"spl-token-indexer-sol/internal/logic/lookuptable"
	"spl-token-indexer-sol/internal/logic/progress"
	"spl-token-indexer-sol/internal/logic/walker"
	"spl-token-indexer-sol/internal/service"
	"spl-token-indexer-sol/internal/sink"
	"spl-token-indexer-sol/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// GrpcServiceContext 包含GRPC服务资源
type GrpcServiceContext struct {
	Config   config.GrpcConfig
	Redis    *redis.Client // 未配置时为 nil
	Tables   lookuptable.Store
	Walker   *walker.BlockWalker
	Tracker  *lookuptable.Tracker
	Sink     sink.EventSink
	Progress *progress.ProgressManager
	Registry *prometheus.Registry
}

// NewGrpcServiceContext 创建一个新的 GRPC 服务上下文
func NewGrpcServiceContext(c config.GrpcConfig) (*GrpcServiceContext, error) {
	ctx := &GrpcServiceContext{
		Config:   c,
		Registry: prometheus.NewRegistry(),
	}
	ctx.Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	ctx.Registry.MustRegister(collectors.NewGoCollector())

	// 1. Redis：地址表与 slot 进度共用，未配置时使用内存实现
	var (
		tables        lookuptable.Store
		progressStore progress.Store
	)
	if c.RedisConf.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.RedisConf.Addr,
			Password: c.RedisConf.Password,
			DB:       c.RedisConf.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			logger.Errorf("Redis 连接失败: %v", err)
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		ctx.Redis = rdb
		tables = lookuptable.NewRedisStore(rdb)
		progressStore = progress.NewRedisProgressStore(rdb, time.Duration(c.ProgressConf.TTLHours)*time.Hour)
	} else {
		logger.Warnf("未配置 Redis，地址表与进度仅保存在内存中")
		tables = lookuptable.NewMemoryStore()
		progressStore = progress.NewMemoryProgressStore(0)
	}

	// 2. 配置了 RPC 时，本地缺失的地址表通过 RPC 补全
	if c.RpcEndpoint != "" {
		loader, err := service.NewRpcLookupTableLoaderWithEndpoint(tables, c.RpcEndpoint)
		if err != nil {
			ctx.Close()
			return nil, err
		}
		tables = loader
	}
	ctx.Tables = tables
	ctx.Tracker = lookuptable.NewTracker(tables)
	ctx.Progress = progress.NewProgressManager(progressStore)

	// 3. 解析器
	ctx.Walker = walker.NewBlockWalker(walker.Options{
		TargetProgram:   c.IndexerConf.TargetProgram,
		LegacyPositions: c.IndexerConf.Compat.LegacyPositions,
		Workers:         c.IndexerConf.Workers,
	}, tables)

	// 4. 输出端
	eventSink, err := sink.NewEventSink(c.SinkConf, c.TimeConf)
	if err != nil {
		logger.Errorf("事件输出端初始化失败: %v", err)
		ctx.Close()
		return nil, err
	}
	ctx.Sink = eventSink

	logger.Infof("GRPC 服务上下文初始化完成, sink=%s, target=%s", c.SinkConf.Type, c.IndexerConf.TargetProgram)
	return ctx, nil
}

// Close 关闭服务上下文中的资源
func (ctx *GrpcServiceContext) Close() {
	if ctx.Sink != nil {
		if err := ctx.Sink.Close(); err != nil {
			logger.Warnf("关闭事件输出端失败: %v", err)
		}
	}
	if ctx.Redis != nil {
		_ = ctx.Redis.Close()
	}
}
