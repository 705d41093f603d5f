package client

import (
	"context"
	"sync"

	"tasksmith/src/domain/entities"
)

// EntityList mantém a lista de um tipo de entidade sincronizada com a API.
// Toda mutação recarrega a lista inteira; não há atualização otimista.
type EntityList struct {
	client     *Client
	entityType string
	orderBy    string

	mu      sync.RWMutex
	items   []entities.Entity
	loading bool
	err     error
}

// ListState é uma cópia do estado da lista num instante.
type ListState struct {
	Items   []entities.Entity
	Loading bool
	Err     error
}

func NewEntityList(client *Client, entityType string, orderBy string) *EntityList {
	return &EntityList{
		client:     client,
		entityType: entityType,
		orderBy:    orderBy,
		items:      []entities.Entity{},
	}
}

// Reload substitui a lista. Se a busca falha, os itens anteriores são mantidos
// e o erro fica registrado.
func (l *EntityList) Reload(ctx context.Context) error {
	l.mu.Lock()
	l.loading = true
	l.mu.Unlock()

	items, err := l.client.List(ctx, l.entityType, l.orderBy)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.loading = false
	l.err = err
	if err != nil {
		return err
	}

	if items == nil {
		items = []entities.Entity{}
	}
	l.items = items
	return nil
}

func (l *EntityList) Create(ctx context.Context, data map[string]any) (*entities.Entity, error) {
	created, err := l.client.Create(ctx, l.entityType, data)
	if err != nil {
		l.setErr(err)
		return nil, err
	}

	return created, l.Reload(ctx)
}

func (l *EntityList) Update(ctx context.Context, id int64, patch map[string]any) (*entities.Entity, error) {
	updated, err := l.client.Update(ctx, l.entityType, id, patch)
	if err != nil {
		l.setErr(err)
		return nil, err
	}

	return updated, l.Reload(ctx)
}

func (l *EntityList) Remove(ctx context.Context, id int64) error {
	if err := l.client.Delete(ctx, l.entityType, id); err != nil {
		l.setErr(err)
		return err
	}

	return l.Reload(ctx)
}

func (l *EntityList) Snapshot() ListState {
	l.mu.RLock()
	defer l.mu.RUnlock()

	items := make([]entities.Entity, len(l.items))
	copy(items, l.items)

	return ListState{Items: items, Loading: l.loading, Err: l.err}
}

func (l *EntityList) setErr(err error) {
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}
