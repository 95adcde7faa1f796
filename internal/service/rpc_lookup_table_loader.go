package service

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"spl-token-indexer-sol/internal/consts"
	"spl-token-indexer-sol/internal/logic/lookuptable"
	"spl-token-indexer-sol/pkg/logger"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/mr-tron/base58"
	"github.com/zeromicro/go-zero/core/collection"
)

// 地址表账户头部长度，之后为连续的 32 字节地址
// https://github.com/solana-labs/solana/blob/master/sdk/program/src/address_lookup_table/state.rs
const lookupTableMetaSize = 56

const (
	defaultFetchTimeout = 5 * time.Second
	negativeCacheExpire = time.Minute
)

var errNotLookupTable = errors.New("account is not an address lookup table")

// AccountFetcher *client.Client 满足该接口
type AccountFetcher interface {
	GetAccountInfo(ctx context.Context, base58Addr string) (client.AccountInfo, error)
}

// RpcLookupTableLoader 包装地址表仓库，本地缺失的表通过 RPC 拉取快照并写回仓库。
// 服务启动前就已存在的地址表只能这样获得。
// RPC 失败按缺失处理（fail-open），不会让区块失败。
type RpcLookupTableLoader struct {
	store   lookuptable.Store
	fetcher AccountFetcher
	absent  *collection.Cache // 近期确认不存在的表，避免重复请求
	timeout time.Duration
}

func NewRpcLookupTableLoader(store lookuptable.Store, fetcher AccountFetcher) (*RpcLookupTableLoader, error) {
	absent, err := collection.NewCache(negativeCacheExpire, collection.WithName("lookup-table-absent"))
	if err != nil {
		return nil, err
	}
	return &RpcLookupTableLoader{
		store:   store,
		fetcher: fetcher,
		absent:  absent,
		timeout: defaultFetchTimeout,
	}, nil
}

func NewRpcLookupTableLoaderWithEndpoint(store lookuptable.Store, endpoint string) (*RpcLookupTableLoader, error) {
	return NewRpcLookupTableLoader(store, client.NewClient(endpoint))
}

func (l *RpcLookupTableLoader) GetResolved(ctx context.Context, key string) ([]string, bool, error) {
	addresses, ok, err := l.store.GetResolved(ctx, key)
	if err != nil || ok {
		return addresses, ok, err
	}

	table := strings.TrimPrefix(key, consts.LookupTableKeyPrefix)
	addresses, ok = l.load(ctx, table)
	return addresses, ok, nil
}

// Append 本地没有该表时拉取完整快照代替增量，快照已包含本次扩展的地址
func (l *RpcLookupTableLoader) Append(ctx context.Context, table string, addresses []string) error {
	_, ok, err := l.store.GetResolved(ctx, consts.LookupTableKey(table))
	if err != nil {
		return err
	}
	if ok {
		return l.store.Append(ctx, table, addresses)
	}

	l.absent.Del(table)
	if _, loaded := l.load(ctx, table); loaded {
		return nil
	}
	return l.store.Append(ctx, table, addresses)
}

func (l *RpcLookupTableLoader) Delete(ctx context.Context, table string) error {
	return l.store.Delete(ctx, table)
}

// load 拉取并写回仓库，返回是否拿到了地址表
func (l *RpcLookupTableLoader) load(ctx context.Context, table string) (addresses []string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[RpcLookupTableLoader] load panic: %v\n%s", r, debug.Stack())
			addresses, ok = nil, false
		}
	}()

	if _, hit := l.absent.Get(table); hit {
		return nil, false
	}

	addresses, err := l.fetch(ctx, table)
	if err != nil {
		logger.Warnf("[RpcLookupTableLoader] 拉取地址表失败: table=%s err=%v", table, err)
		l.absent.Set(table, struct{}{})
		return nil, false
	}
	if len(addresses) == 0 {
		l.absent.Set(table, struct{}{})
		return nil, false
	}

	if err := l.store.Delete(ctx, table); err != nil {
		logger.Warnf("[RpcLookupTableLoader] 清理旧地址表失败: table=%s err=%v", table, err)
		return addresses, true
	}
	if err := l.store.Append(ctx, table, addresses); err != nil {
		logger.Warnf("[RpcLookupTableLoader] 写回地址表失败: table=%s err=%v", table, err)
	}
	logger.Infof("[RpcLookupTableLoader] 已加载地址表 %s, 地址数: %d", table, len(addresses))
	return addresses, true
}

func (l *RpcLookupTableLoader) fetch(ctx context.Context, table string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	info, err := l.fetcher.GetAccountInfo(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("GetAccountInfo failed: %w", err)
	}
	if len(info.Data) == 0 {
		return nil, nil // 账户不存在
	}
	if info.Owner.ToBase58() != consts.AddressLookupTableProgramStr {
		return nil, errNotLookupTable
	}
	return ParseLookupTableAccount(info.Data)
}

// ParseLookupTableAccount 解析地址表账户数据中的地址列表
func ParseLookupTableAccount(data []byte) ([]string, error) {
	if len(data) < lookupTableMetaSize {
		return nil, fmt.Errorf("lookup table data too short: %d", len(data))
	}
	body := data[lookupTableMetaSize:]
	if len(body)%32 != 0 {
		return nil, fmt.Errorf("lookup table addresses not aligned: %d", len(body))
	}
	out := make([]string, 0, len(body)/32)
	for i := 0; i < len(body); i += 32 {
		out = append(out, base58.Encode(body[i:i+32]))
	}
	return out, nil
}
