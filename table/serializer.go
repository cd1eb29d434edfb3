package table

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
	"go.mongodb.org/mongo-driver/bson"
)

// tablePayload 持久化存储里的整表载荷
type tablePayload struct {
	Cells [][]any `json:"cells" msgpack:"cells" bson:"cells"`
}

// Serializer 表载荷序列化器
type Serializer interface {
	Serialize(payload *tablePayload) ([]byte, error)
	Deserialize(data []byte) (*tablePayload, error)
}

// NewSerializer 按名称构造序列化器，空串默认 msgpack
func NewSerializer(codec string) (Serializer, error) {
	switch codec {
	case "", "msgpack":
		return &MsgPackSerializer{}, nil
	case "json":
		return &JSONSerializer{}, nil
	case "bson":
		return &BSONSerializer{}, nil
	}
	return nil, errors.Errorf("unsupported codec [%s]", codec)
}

type JSONSerializer struct{}

func (s *JSONSerializer) Serialize(payload *tablePayload) ([]byte, error) {
	return json.Marshal(payload)
}

func (s *JSONSerializer) Deserialize(data []byte) (*tablePayload, error) {
	var payload tablePayload
	err := json.Unmarshal(data, &payload)
	return &payload, err
}

type MsgPackSerializer struct{}

func (s *MsgPackSerializer) Serialize(payload *tablePayload) ([]byte, error) {
	return msgpack.Marshal(payload)
}

func (s *MsgPackSerializer) Deserialize(data []byte) (*tablePayload, error) {
	var payload tablePayload
	err := msgpack.Unmarshal(data, &payload)
	return &payload, err
}

type BSONSerializer struct{}

func (s *BSONSerializer) Serialize(payload *tablePayload) ([]byte, error) {
	return bson.Marshal(payload)
}

func (s *BSONSerializer) Deserialize(data []byte) (*tablePayload, error) {
	var payload tablePayload
	err := bson.Unmarshal(data, &payload)
	return &payload, err
}
