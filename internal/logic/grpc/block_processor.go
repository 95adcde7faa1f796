package grpc

import (
	"context"
	"errors"
	"time"

	"spl-token-indexer-sol/internal/logic/core"
	"spl-token-indexer-sol/internal/logic/lookuptable"
	"spl-token-indexer-sol/internal/logic/txadapter"
	"spl-token-indexer-sol/internal/logic/walker"
	"spl-token-indexer-sol/internal/svc"

	"github.com/prometheus/client_golang/prometheus"
	pb "github.com/rpcpool/yellowstone-grpc/examples/golang/proto"
	"github.com/zeromicro/go-zero/core/logx"
)

// GapReporter 接收未从流中收到的 slot 区间
type GapReporter interface {
	Submit(from, to uint64)
}

type BlockProcessor struct {
	sc        *svc.GrpcServiceContext
	blockChan chan *pb.SubscribeUpdateBlock // 接收 block 的 channel
	gaps      GapReporter                   // 可为 nil
	metrics   *processorMetrics
	lastSlot  uint64
	ctx       context.Context
	cancel    func(err error)
	logx.Logger
}

func NewBlockProcessor(
	sc *svc.GrpcServiceContext,
	blockChan chan *pb.SubscribeUpdateBlock,
	gaps GapReporter,
) *BlockProcessor {
	ctx, cancel := context.WithCancelCause(context.Background())
	var reg prometheus.Registerer
	if sc.Registry != nil {
		reg = sc.Registry
	}
	return &BlockProcessor{
		sc:        sc,
		blockChan: blockChan,
		gaps:      gaps,
		metrics:   newProcessorMetrics(reg),
		Logger:    logx.WithContext(ctx).WithFields(logx.Field("service", "block_processor")),
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (p *BlockProcessor) Start() {
	for {
		select {
		case <-p.ctx.Done():
			return // 退出
		case block, ok := <-p.blockChan:
			if !ok {
				return
			}
			p.procBlock(block)
			if len(p.blockChan) > 10 {
				p.Debugf("block chan len:%v", len(p.blockChan))
			}
		}
	}
}

func (p *BlockProcessor) Stop() {
	p.cancel(errors.New("service stop"))
}

func (p *BlockProcessor) procBlock(block *pb.SubscribeUpdateBlock) {
	if block == nil {
		return
	}
	startTime := time.Now()
	slot := block.Slot
	defer func() {
		p.metrics.processDuration.Observe(time.Since(startTime).Seconds())
		p.Infof("区块处理总耗时: %v, slot: %d", time.Since(startTime), slot)
	}()

	p.trackGap(slot)
	if block.BlockTime != nil {
		p.metrics.blockLatency.Set(float64(startTime.UnixMilli() - block.BlockTime.Timestamp*1000))
	}

	ctx, cancel := context.WithTimeout(p.ctx, p.sc.Config.TimeConf.SlotDispatchTimeout())
	defer cancel()

	if err := p.ProcessBlock(ctx, block); err != nil {
		p.Errorf("slot %d 处理失败: %v", slot, err)
	}
}

// ProcessBlock 判重 → 转换 → 解析 → 地址表更新 → 发布 → 标记进度。
// 地址表变更无论发布是否成功都会应用，保证仓库跟随链上状态。
func (p *BlockProcessor) ProcessBlock(ctx context.Context, block *pb.SubscribeUpdateBlock) error {
	slot := block.Slot

	// 1. 判重，Redis 出错时继续处理（下游按 slot 幂等）
	should, err := p.sc.Progress.ShouldProcessSlot(ctx, slot)
	if err != nil {
		p.Errorf("查询 slot %d 进度失败, 继续处理: %v", slot, err)
		should = true
	}
	if !should {
		p.Infof("slot %d 已处理, 跳过", slot)
		p.metrics.blocks.WithLabelValues("duplicate").Inc()
		return nil
	}
	_ = p.sc.Progress.MarkSlotPending(ctx, slot)

	// 2. 结构转换
	coreBlock, err := txadapter.AdaptGrpcBlock(block)
	if err != nil {
		p.markInvalid(ctx, slot)
		return err
	}

	// 3. 解析
	parseStart := time.Now()
	result, err := p.sc.Walker.Walk(ctx, coreBlock)
	if err != nil {
		if core.IsBlockFatal(err) {
			p.markInvalid(ctx, slot)
		} else {
			p.metrics.blocks.WithLabelValues("failed").Inc()
		}
		return err
	}
	p.Infof("事件解析耗时: %v", time.Since(parseStart))
	p.observeWalk(result.Stats)

	// 4. 地址表变更从下一个 slot 起生效
	trackStats, err := p.sc.Tracker.Apply(ctx, coreBlock)
	if err != nil {
		p.Errorf("slot %d 地址表更新失败: %v", slot, err)
	}
	p.observeTrack(trackStats)

	p.Infof("总tx数量: %v, 失败tx: %v, 丢弃tx: %v, 总事件数量: %v",
		result.Stats.Transactions, result.Stats.FailedTransactions, result.Stats.SkippedTransactions, len(result.Events))

	// 5. 发布
	if err := p.sc.Sink.Publish(ctx, slot, result.Events); err != nil {
		p.metrics.publishErrors.Inc()
		p.metrics.blocks.WithLabelValues("failed").Inc()
		return err
	}

	// 6. 标记进度
	if err := p.sc.Progress.MarkSlotProcessed(ctx, slot); err != nil {
		p.Errorf("标记 slot %d 已处理失败: %v", slot, err)
	}
	p.metrics.blocks.WithLabelValues("processed").Inc()
	return nil
}

func (p *BlockProcessor) markInvalid(ctx context.Context, slot uint64) {
	p.metrics.blocks.WithLabelValues("invalid").Inc()
	if err := p.sc.Progress.MarkSlotInvalid(ctx, slot); err != nil {
		p.Errorf("标记 slot %d 无效失败: %v", slot, err)
	}
}

// trackGap 发现跳号时交给 GapChecker 确认是否为空块
func (p *BlockProcessor) trackGap(slot uint64) {
	last := p.lastSlot
	if slot > last {
		p.lastSlot = slot
	}
	if last == 0 || slot <= last+1 || p.gaps == nil {
		return
	}
	p.gaps.Submit(last+1, slot-1)
}

func (p *BlockProcessor) observeWalk(s walker.WalkStats) {
	p.metrics.events.WithLabelValues("top").Add(float64(s.TopLevelEvents))
	p.metrics.events.WithLabelValues("inner").Add(float64(s.InnerEvents))
	p.metrics.skippedTxs.Add(float64(s.SkippedTransactions))
	p.metrics.malformed.Add(float64(s.MalformedPayloads))
	p.metrics.unknown.Add(float64(s.UnknownInstructions))
}

func (p *BlockProcessor) observeTrack(s lookuptable.TrackStats) {
	p.metrics.lookupChanges.WithLabelValues("create").Add(float64(s.Created))
	p.metrics.lookupChanges.WithLabelValues("extend").Add(float64(s.Extended))
	p.metrics.lookupChanges.WithLabelValues("close").Add(float64(s.Closed))
}
