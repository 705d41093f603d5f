package stubs

import (
	"encoding/json"
	"time"

	"tasksmith/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type EntityStub struct {
	entity entities.Entity
}

func NewEntityStub() EntityStub {
	now := time.Now().UTC().Truncate(time.Microsecond)

	data, _ := json.Marshal(map[string]any{
		"name":  gofakeit.Name(),
		"email": gofakeit.Email(),
	})

	return EntityStub{entity: entities.Entity{
		ID:        gofakeit.Int64(),
		Type:      "Note",
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}}
}

func (es EntityStub) WithID(id int64) EntityStub {
	es.entity.ID = id
	return es
}

func (es EntityStub) WithType(entityType string) EntityStub {
	es.entity.Type = entityType
	return es
}

func (es EntityStub) WithData(data map[string]any) EntityStub {
	raw, _ := json.Marshal(data)
	es.entity.Data = raw
	return es
}

func (es EntityStub) WithCreatedAt(createdAt time.Time) EntityStub {
	es.entity.CreatedAt = createdAt
	es.entity.UpdatedAt = createdAt
	return es
}

func (es EntityStub) Get() entities.Entity {
	return es.entity
}
