package entity

import (
	"github.com/pkg/errors"
)

var ErrEntityNotFound = errors.New("entity not found")

// Registry 实体注册表，启动时配置一次，之后不可变
type Registry struct {
	entities map[string]*Entity
	names    []string
}

func NewRegistry(entities ...*Entity) (*Registry, error) {
	r := &Registry{
		entities: make(map[string]*Entity, len(entities)),
	}
	for _, e := range entities {
		if e.Name == "" {
			return nil, errors.New("entity name is empty")
		}
		if _, exists := r.entities[e.Name]; exists {
			return nil, errors.Errorf("duplicate entity [%s]", e.Name)
		}
		e.Init()
		r.entities[e.Name] = e
		r.names = append(r.names, e.Name)
	}
	return r, nil
}

// Get 按名称获取实体定义
func (r *Registry) Get(name string) (*Entity, error) {
	e, ok := r.entities[name]
	if !ok {
		return nil, errors.WithMessagef(ErrEntityNotFound, "unknown entity [%s]", name)
	}
	return e, nil
}

// Entities 按注册顺序返回全部实体
func (r *Registry) Entities() []*Entity {
	entities := make([]*Entity, 0, len(r.names))
	for _, name := range r.names {
		entities = append(entities, r.entities[name])
	}
	return entities
}
