package fakerefreshrepo

import (
	"sync"

	"github.com/jrsteele09/go-rdp-session/token/refresh"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

type FakeRefreshTokenRepo struct {
	tokens map[string]*refresh.StoredRefreshToken
	byUser map[string]string
	lock   sync.RWMutex
}

func NewFakeRefreshTokenRepo() refresh.Repo {
	return &FakeRefreshTokenRepo{
		tokens: make(map[string]*refresh.StoredRefreshToken),
		byUser: make(map[string]string),
	}
}

func (r *FakeRefreshTokenRepo) Upsert(rt *refresh.StoredRefreshToken) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.tokens[rt.Token] = rt
	r.byUser[rt.Username] = rt.Token
	return nil
}

func (r *FakeRefreshTokenRepo) Delete(token string) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	rt, ok := r.tokens[token]
	if !ok {
		return refresh.ErrNotFound
	}
	delete(r.tokens, token)
	if r.byUser[rt.Username] == token {
		delete(r.byUser, rt.Username)
	}
	return nil
}

func (r *FakeRefreshTokenRepo) Get(token string) (*refresh.StoredRefreshToken, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	rt, ok := r.tokens[token]
	if !ok {
		return nil, refresh.ErrNotFound
	}
	copied := *rt
	return &copied, nil
}

func (r *FakeRefreshTokenRepo) GetByUsername(username string) (*refresh.StoredRefreshToken, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	token, ok := r.byUser[username]
	if !ok {
		return nil, refresh.ErrNotFound
	}
	copied := *r.tokens[token]
	return &copied, nil
}
