package fakeclientrepo

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-rdp-session/clients"
)

var _ clients.Repo = (*FakeClientRepo)(nil)

type FakeClientRepo struct {
	clients map[string]*clients.Client
	lock    sync.RWMutex
}

func NewFakeClientRepo() clients.Repo {
	return &FakeClientRepo{
		clients: make(map[string]*clients.Client),
	}
}

func (r *FakeClientRepo) Upsert(clientData *clients.Client) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if clientData.ID == "" {
		clientData.ID = uuid.New().String()
	}
	r.clients[clientData.ID] = clientData
	return nil
}

func (r *FakeClientRepo) Delete(clientID string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.clients[clientID]; !ok {
		return clients.ErrClientNotFound
	}
	delete(r.clients, clientID)
	return nil
}

func (r *FakeClientRepo) Get(clientID string) (*clients.Client, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	c, ok := r.clients[clientID]
	if !ok {
		return nil, clients.ErrClientNotFound
	}
	copied := *c
	copied.Scopes = append([]string(nil), c.Scopes...)
	return &copied, nil
}
