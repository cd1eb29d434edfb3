package table

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

type BoltStoreOptions struct {
	// DBPath 数据库文件路径，不存在时自动创建
	DBPath string `cfg:"dbPath" validate:"required"`

	// BucketName 存储桶名称，默认 tables
	BucketName string `cfg:"bucketName"`

	// Codec 表载荷的序列化格式：msgpack, json, bson，默认 msgpack
	Codec string `cfg:"codec" validate:"omitempty,oneof=msgpack json bson"`

	// Timeout 获取文件锁的等待时间，零值表示无限期等待
	Timeout time.Duration `cfg:"timeout"`
}

// BoltStore 基于 bbolt 的持久化表格存储，一个键对应一张逻辑表
type BoltStore struct {
	db         *bolt.DB
	serializer Serializer
	bucketName []byte
}

func NewBoltStoreWithOptions(options *BoltStoreOptions) (*BoltStore, error) {
	if options == nil {
		return nil, errors.New("options is nil")
	}
	if err := validator.New().Struct(options); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}
	if options.BucketName == "" {
		options.BucketName = "tables"
	}

	serializer, err := NewSerializer(options.Codec)
	if err != nil {
		return nil, err
	}

	db, err := bolt.Open(options.DBPath, 0600, &bolt.Options{Timeout: options.Timeout})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database [%s]", options.DBPath)
	}

	store := &BoltStore{
		db:         db,
		serializer: serializer,
		bucketName: []byte(options.BucketName),
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(store.bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create bucket")
	}
	return store, nil
}

func (s *BoltStore) ReadTable(name string) ([][]any, error) {
	var raw []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(s.bucketName).Get([]byte(name)); v != nil {
			raw = append([]byte{}, v...)
		}
		return nil
	}); err != nil {
		return nil, errors.Wrapf(err, "failed to read table [%s]", name)
	}
	if raw == nil {
		return nil, errors.WithMessagef(ErrTableNotFound, "read table [%s]", name)
	}

	payload, err := s.serializer.Deserialize(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode table [%s]", name)
	}
	return payload.Cells, nil
}

func (s *BoltStore) WriteTable(name string, data [][]any) error {
	raw, err := s.serializer.Serialize(&tablePayload{Cells: data})
	if err != nil {
		return errors.Wrapf(err, "failed to encode table [%s]", name)
	}
	return errors.Wrapf(s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucketName).Put([]byte(name), raw)
	}), "failed to write table [%s]", name)
}

func (s *BoltStore) ClearTable(name string) error {
	return errors.Wrapf(s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(s.bucketName).Delete([]byte(name))
	}), "failed to clear table [%s]", name)
}

func (s *BoltStore) CopyTable(name string, target string) error {
	data, err := s.ReadTable(name)
	if err != nil {
		return err
	}
	return s.WriteTable(target, data)
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
