package sink

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"spl-token-indexer-sol/internal/logic/core"
	"spl-token-indexer-sol/pkg/logger"

	"github.com/nats-io/nats.go"
	"github.com/zeromicro/go-zero/core/jsonx"
)

const defaultPublishTimeout = 5 * time.Second

// NatsOption JetStream 发布参数
type NatsOption struct {
	URL            string
	Stream         string
	SubjectRoot    string
	PublishTimeout time.Duration
}

func (o NatsOption) Validate() error {
	if o.URL == "" {
		return errors.New("nats url is required")
	}
	if o.Stream == "" {
		return errors.New("nats stream is required")
	}
	if o.SubjectRoot == "" {
		return errors.New("subject root cannot be empty")
	}
	return nil
}

// NatsSink 每个事件一条消息，subject 为 <root>.<instruction>，
// Nats-Msg-Id 由 slot、tx_id 与交易内序号组成，重放同一 slot 时由 JetStream 去重
type NatsSink struct {
	opt  NatsOption
	conn *nats.Conn
	js   nats.JetStreamContext
}

func NewNatsSink(opt NatsOption) (*NatsSink, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	if opt.PublishTimeout <= 0 {
		opt.PublishTimeout = defaultPublishTimeout
	}

	conn, err := nats.Connect(opt.URL, nats.Name("spl-token-indexer"))
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	s := &NatsSink{opt: opt, conn: conn, js: js}
	if err := s.ensureStream(); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// ensureStream stream 不存在时创建
func (s *NatsSink) ensureStream() error {
	_, err := s.js.StreamInfo(s.opt.Stream)
	if err == nil {
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("describe stream %q: %w", s.opt.Stream, err)
	}
	_, err = s.js.AddStream(&nats.StreamConfig{
		Name:       s.opt.Stream,
		Subjects:   []string{s.opt.SubjectRoot + ".>"},
		Duplicates: 10 * time.Minute,
	})
	if err != nil {
		return fmt.Errorf("add stream %q: %w", s.opt.Stream, err)
	}
	logger.Infof("[NatsSink] 已创建 stream %s, subjects=%s.>", s.opt.Stream, s.opt.SubjectRoot)
	return nil
}

func (s *NatsSink) Publish(ctx context.Context, slot uint64, events []*core.EventRecord) error {
	var (
		lastTx string
		seq    int
	)
	for _, evt := range events {
		if evt.TxID != lastTx {
			lastTx, seq = evt.TxID, 0
		}
		data, err := jsonx.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}

		msg := nats.NewMsg(s.Subject(evt.InstructionType))
		msg.Data = data
		msg.Header.Set(nats.MsgIdHdr, MsgID(slot, evt.TxID, seq))
		msg.Header.Set("Slot", strconv.FormatUint(slot, 10))

		pubCtx, cancel := s.WithTimeout(ctx)
		_, err = s.js.PublishMsg(msg, nats.Context(pubCtx), nats.ExpectStream(s.opt.Stream))
		cancel()
		if err != nil {
			return fmt.Errorf("publish %s: %w", msg.Subject, err)
		}
		seq++
	}
	return nil
}

// Subject 指令名转为小写的 subject token，空格去掉
func (s *NatsSink) Subject(instructionType string) string {
	token := strings.ToLower(strings.ReplaceAll(instructionType, " ", ""))
	return s.opt.SubjectRoot + "." + token
}

// WithTimeout returns a context with the publisher's timeout applied.
func (s *NatsSink) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.opt.PublishTimeout)
}

func (s *NatsSink) Close() error {
	if s.conn == nil {
		return nil
	}
	if err := s.conn.Drain(); err != nil {
		s.conn.Close()
		return err
	}
	return nil
}

// MsgID 去重 id：slot:tx_id:交易内第几个事件
func MsgID(slot uint64, txID string, seq int) string {
	return fmt.Sprintf("%d:%s:%d", slot, txID, seq)
}
