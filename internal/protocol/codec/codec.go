package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/palemoky/hearts/internal/protocol"
)

// Format 帧格式
type Format int

const (
	FormatJSON  Format = iota // 文本帧，JSON
	FormatProto               // 二进制帧，protobuf Struct 信封
)

const (
	fieldType    = "type"
	fieldPayload = "payload"
)

var errMissingType = errors.New("message type is missing")

// NewMessage 创建一个新消息，payload 以 JSON 编码
func NewMessage(msgType protocol.MessageType, payload any) (*protocol.Message, error) {
	msg := &protocol.Message{Type: msgType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", msgType, err)
		}
		msg.Payload = data
	}
	return msg, nil
}

// MustNewMessage 创建消息，失败时 panic
func MustNewMessage(msgType protocol.MessageType, payload any) *protocol.Message {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		panic(err)
	}
	return msg
}

// ParsePayload 解析消息的 Payload 到指定类型
func ParsePayload[T any](msg *protocol.Message) (*T, error) {
	var payload T
	if len(msg.Payload) == 0 {
		return &payload, nil
	}
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", msg.Type, err)
	}
	return &payload, nil
}

// NewErrorMessage 创建错误消息
func NewErrorMessage(code int) *protocol.Message {
	return NewErrorMessageWithText(code, protocol.ErrorMessages[code])
}

// NewErrorMessageWithText 创建带自定义文本的错误消息
func NewErrorMessageWithText(code int, text string) *protocol.Message {
	msg, _ := NewMessage(protocol.MsgError, protocol.ErrorPayload{
		Code:    code,
		Message: text,
	})
	return msg
}

// Encode 按帧格式编码消息
func Encode(m *protocol.Message, f Format) ([]byte, error) {
	if f == FormatProto {
		return encodeProto(m)
	}

	buf := GetBuffer()
	defer PutBuffer(buf)
	if err := json.NewEncoder(buf).Encode(m); err != nil {
		return nil, err
	}
	// Encoder appends a newline
	out := buf.Bytes()
	return append([]byte(nil), out[:len(out)-1]...), nil
}

// Decode 按帧格式解码消息
func Decode(data []byte, f Format) (*protocol.Message, error) {
	var msg protocol.Message
	if f == FormatProto {
		if err := decodeProto(data, &msg); err != nil {
			return nil, err
		}
	} else if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}

	if msg.Type == "" {
		return nil, errMissingType
	}
	return &msg, nil
}

func encodeProto(m *protocol.Message) ([]byte, error) {
	env := GetEnvelope()
	defer PutEnvelope(env)

	env.Fields = map[string]*structpb.Value{
		fieldType: structpb.NewStringValue(string(m.Type)),
	}
	if len(m.Payload) > 0 {
		payload := &structpb.Value{}
		if err := protojson.Unmarshal(m.Payload, payload); err != nil {
			return nil, fmt.Errorf("convert payload: %w", err)
		}
		env.Fields[fieldPayload] = payload
	}
	return proto.Marshal(env)
}

func decodeProto(data []byte, msg *protocol.Message) error {
	env := GetEnvelope()
	defer PutEnvelope(env)

	if err := proto.Unmarshal(data, env); err != nil {
		return err
	}
	msg.Type = protocol.MessageType(env.GetFields()[fieldType].GetStringValue())

	if payload, ok := env.GetFields()[fieldPayload]; ok {
		raw, err := protojson.Marshal(payload)
		if err != nil {
			return fmt.Errorf("convert payload: %w", err)
		}
		msg.Payload = raw
	}
	return nil
}
