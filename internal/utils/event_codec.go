package utils

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/zeromicro/go-zero/core/jsonx"
)

const (
	// EventTypeTokenInstruction SPL Token 指令事件批次
	EventTypeTokenInstruction uint32 = 1
)

var ErrShortEventPayload = errors.New("event payload shorter than type prefix")

// EncodeEvent 将消息编码为带事件类型前缀的二进制数据：
// - 前 4 字节为事件类型（uint32，小端序）
// - 后续为 JSON 序列化数据
func EncodeEvent(eventType uint32, msg any) ([]byte, error) {
	body, err := jsonx.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("EncodeEvent: marshal %T: %w", msg, err)
	}

	buf := make([]byte, 4, 4+len(body))
	binary.LittleEndian.PutUint32(buf[:4], eventType)
	return append(buf, body...), nil
}

// DecodeEvent 解析 EncodeEvent 的输出，返回事件类型
func DecodeEvent(data []byte, out any) (uint32, error) {
	if len(data) < 4 {
		return 0, ErrShortEventPayload
	}
	eventType := binary.LittleEndian.Uint32(data[:4])
	if err := jsonx.Unmarshal(data[4:], out); err != nil {
		return eventType, fmt.Errorf("DecodeEvent: unmarshal type %d: %w", eventType, err)
	}
	return eventType, nil
}
