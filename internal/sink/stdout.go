package sink

import (
	"context"
	"io"
	"sync"

	"spl-token-indexer-sol/internal/logic/core"

	"github.com/zeromicro/go-zero/core/jsonx"
)

// StdoutSink 每个事件输出一行 JSON，用于调试与回放
type StdoutSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewStdoutSink(w io.Writer) *StdoutSink {
	return &StdoutSink{w: w}
}

func (s *StdoutSink) Publish(ctx context.Context, _ uint64, events []*core.EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, evt := range events {
		if err := ctx.Err(); err != nil {
			return err
		}
		line, err := jsonx.Marshal(evt)
		if err != nil {
			return err
		}
		line = append(line, '\n')
		if _, err := s.w.Write(line); err != nil {
			return err
		}
	}
	return nil
}

func (s *StdoutSink) Close() error { return nil }
