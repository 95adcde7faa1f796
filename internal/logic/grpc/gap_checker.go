package grpc

import (
	"context"
	"fmt"
	"sort"
	"time"

	"spl-token-indexer-sol/internal/logic/progress"
	"spl-token-indexer-sol/pkg/logger"

	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BlockLister 返回 [from, to] 内实际出块的 slot
type BlockLister interface {
	ListBlocks(ctx context.Context, from, to uint64) ([]uint64, error)
}

type rpcBlockLister struct {
	client rpc.RpcClient
}

func NewRpcBlockLister(endpoint string) BlockLister {
	return &rpcBlockLister{client: rpc.NewRpcClient(endpoint)}
}

func (l *rpcBlockLister) ListBlocks(ctx context.Context, from, to uint64) ([]uint64, error) {
	resp, err := l.client.GetBlocks(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}

type GapCheckOption struct {
	Settle    time.Duration // gap 提交后等待多久再查询，节点确认需要时间
	Interval  time.Duration // 扫描周期
	MaxSpan   uint64        // 单次 getBlocks 的最大跨度
	MaxRounds int           // 查询失败后最多再排队几轮
	MaxQueued int
}

func (o GapCheckOption) withDefaults() GapCheckOption {
	if o.Settle <= 0 {
		o.Settle = 30 * time.Second
	}
	if o.Interval <= 0 {
		o.Interval = 10 * time.Second
	}
	if o.MaxSpan == 0 {
		o.MaxSpan = 10000
	}
	if o.MaxRounds <= 0 {
		o.MaxRounds = 3
	}
	if o.MaxQueued <= 0 {
		o.MaxQueued = 200
	}
	return o
}

// slotGap 闭区间 [From, To]，Due 之后才查询
type slotGap struct {
	From  uint64
	To    uint64
	Due   time.Time
	Round int
}

// GapChecker 确认流中跳过的 slot 是空块还是漏块。
// 链上有块、进度中却没有记录的 slot 标记为 progress.SlotMissing，由补数流程按 slot 重放；
// getBlocks 失败的区间重新排队，超过 MaxRounds 后放弃。
type GapChecker struct {
	lister   BlockLister
	progress *progress.ProgressManager // 可为 nil
	opt      GapCheckOption
	gapCh    chan slotGap
	ctx      context.Context
	cancel   context.CancelFunc

	missing prometheus.Counter
	empty   prometheus.Counter
	dropped prometheus.Counter
}

func NewGapChecker(lister BlockLister, pm *progress.ProgressManager, reg prometheus.Registerer, opt GapCheckOption) *GapChecker {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	opt = opt.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	factory := promauto.With(reg)
	return &GapChecker{
		lister:   lister,
		progress: pm,
		opt:      opt,
		gapCh:    make(chan slotGap, 300),
		ctx:      ctx,
		cancel:   cancel,
		missing: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: metricSubsystem,
			Name:      "missing_slots_total",
			Help:      "Non-empty slots never received from the stream.",
		}),
		empty: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: metricSubsystem,
			Name:      "empty_slots_total",
			Help:      "Skipped slots confirmed to have no block.",
		}),
		dropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricNamespace,
			Subsystem: metricSubsystem,
			Name:      "unchecked_slots_total",
			Help:      "Skipped slots abandoned without confirmation.",
		}),
	}
}

func (c *GapChecker) Start() {
	c.run()
}

func (c *GapChecker) Stop() {
	c.cancel()
}

// Submit 非阻塞提交跳过的 slot 区间
func (c *GapChecker) Submit(from, to uint64) {
	if from > to {
		logger.Warnf("[GapChecker] invalid gap [%d, %d]", from, to)
		return
	}
	select {
	case c.gapCh <- slotGap{From: from, To: to, Due: time.Now().Add(c.opt.Settle)}:
	default:
		c.dropped.Add(float64(to - from + 1))
		logger.Warnf("[GapChecker] queue full, drop gap [%d, %d]", from, to)
	}
}

func (c *GapChecker) run() {
	ticker := time.NewTicker(c.opt.Interval)
	defer ticker.Stop()

	var queued []slotGap
	for {
		select {
		case <-c.ctx.Done():
			logger.Infof("[GapChecker] stopped, %d gaps unchecked", len(queued))
			return
		case g := <-c.gapCh:
			if len(queued) >= c.opt.MaxQueued {
				c.dropped.Add(float64(g.To - g.From + 1))
				logger.Warnf("[GapChecker] %d gaps queued, drop [%d, %d]", len(queued), g.From, g.To)
				continue
			}
			queued = append(queued, g)
		case now := <-ticker.C:
			due, rest := splitDue(queued, now)
			if len(due) == 0 {
				continue
			}
			queued = append(rest, c.checkGaps(c.ctx, due)...)
		}
	}
}

// splitDue 拆出已到期的 gap，其余保持原顺序
func splitDue(gaps []slotGap, now time.Time) (due, rest []slotGap) {
	for _, g := range gaps {
		if now.Before(g.Due) {
			rest = append(rest, g)
		} else {
			due = append(due, g)
		}
	}
	return due, rest
}

// coalesceGaps 按起点排序，合并重叠或相邻的 gap，轮次取较大者
func coalesceGaps(gaps []slotGap) []slotGap {
	if len(gaps) == 0 {
		return nil
	}
	sorted := make([]slotGap, len(gaps))
	copy(sorted, gaps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].From < sorted[j].From })

	out := []slotGap{sorted[0]}
	for _, g := range sorted[1:] {
		last := &out[len(out)-1]
		if g.From > last.To+1 {
			out = append(out, g)
			continue
		}
		last.To = max(last.To, g.To)
		last.Round = max(last.Round, g.Round)
	}
	return out
}

// checkGaps 按 MaxSpan 分段查询，返回需要下一轮重查的区间
func (c *GapChecker) checkGaps(ctx context.Context, gaps []slotGap) (retry []slotGap) {
	for _, g := range coalesceGaps(gaps) {
		for from := g.From; from <= g.To; {
			to := min(g.To, from+c.opt.MaxSpan-1)
			err := c.checkSpan(ctx, from, to)
			switch {
			case err == nil:
			case ctx.Err() != nil:
				return nil
			case g.Round+1 >= c.opt.MaxRounds:
				c.dropped.Add(float64(to - from + 1))
				logger.Errorf("[GapChecker] give up [%d, %d] after %d rounds: %v", from, to, g.Round+1, err)
			default:
				logger.Warnf("[GapChecker] %v, retry next round", err)
				retry = append(retry, slotGap{From: from, To: to, Due: time.Now().Add(c.opt.Interval), Round: g.Round + 1})
			}
			from = to + 1
		}
	}
	return retry
}

func (c *GapChecker) checkSpan(ctx context.Context, from, to uint64) error {
	rctx, cancel := context.WithTimeout(ctx, 6*time.Second)
	produced, err := c.lister.ListBlocks(rctx, from, to)
	cancel()
	if err != nil {
		return fmt.Errorf("getBlocks [%d, %d]: %w", from, to, err)
	}

	seen := 0
	for _, slot := range produced {
		if slot < from || slot > to {
			continue
		}
		seen++
		c.reconcile(ctx, slot)
	}
	c.empty.Add(float64(int(to-from+1) - seen))
	return nil
}

// reconcile 出块的 slot 若进度中没有记录则为漏块；
// 流重连后补推或乱序到达的 slot 已有状态，不算漏块
func (c *GapChecker) reconcile(ctx context.Context, slot uint64) {
	if c.progress == nil {
		c.missing.Inc()
		logger.Errorf("[GapChecker] slot %d is missing", slot)
		return
	}

	status, err := c.progress.SlotStatus(ctx, slot)
	if err != nil {
		c.missing.Inc()
		logger.Errorf("[GapChecker] slot %d is missing, progress unavailable: %v", slot, err)
		return
	}
	if status != progress.SlotUnknown {
		logger.Debugf("[GapChecker] slot %d arrived late, status=%s", slot, status)
		return
	}

	c.missing.Inc()
	logger.Errorf("[GapChecker] slot %d is missing, marked for backfill", slot)
	if err := c.progress.MarkSlotMissing(ctx, slot); err != nil {
		logger.Warnf("[GapChecker] mark slot %d missing: %v", slot, err)
	}
}
