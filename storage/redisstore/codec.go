package redisstore

import (
	"encoding/json"
	"fmt"

	"repokit/domain/entity"
)

// Codec 实体与存储记录之间的编解码
type Codec[E entity.IEntity] interface {
	Encode(e E) ([]byte, error)
	Decode(data []byte) (E, error)
}

type envelope[P any] struct {
	ID    string `json:"id"`
	Props P      `json:"props"`
}

// JSONCodec 以 {"id":..., "props":{...}} 形式存储实体
type JSONCodec[E entity.IEntity, P any] struct {
	props func(E) P
	build func(id string, props P) E
}

// NewJSONCodec 创建 JSON 编解码器
//
// props 取出实体属性，build 由 ID 与属性重建实体。
func NewJSONCodec[E entity.IEntity, P any](props func(E) P, build func(id string, props P) E) *JSONCodec[E, P] {
	return &JSONCodec[E, P]{props: props, build: build}
}

func (c *JSONCodec[E, P]) Encode(e E) ([]byte, error) {
	return json.Marshal(envelope[P]{ID: e.GetID(), Props: c.props(e)})
}

func (c *JSONCodec[E, P]) Decode(data []byte) (E, error) {
	var env envelope[P]
	if err := json.Unmarshal(data, &env); err != nil {
		var zero E
		return zero, fmt.Errorf("redisstore: decode record: %w", err)
	}
	return c.build(env.ID, env.Props), nil
}
