package fakeuserrepo

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-rdp-session/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users map[string]*users.User
	lock  sync.RWMutex
}

func NewFakeUserRepo() users.UserRepo {
	return &FakeUserRepo{
		users: make(map[string]*users.User),
	}
}

func (ur *FakeUserRepo) Upsert(user *users.User) error {
	if user.Username == "" {
		return users.ErrEmptyUsername
	}
	ur.lock.Lock()
	defer ur.lock.Unlock()
	ur.users[user.Username] = user
	return nil
}

func (ur *FakeUserRepo) Delete(username string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()
	if _, ok := ur.users[username]; !ok {
		return users.ErrUserNotFound
	}
	delete(ur.users, username)
	return nil
}

func (ur *FakeUserRepo) Get(username string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()
	user, ok := ur.users[username]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (ur *FakeUserRepo) SetLastLogin(username string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()
	user, ok := ur.users[username]
	if !ok {
		return users.ErrUserNotFound
	}
	user.LastLogin = time.Now()
	return nil
}
