package users

import (
	"context"
	"sync"

	"stockroom/models"
)

// MemoryDirectory keeps users in process memory.
type MemoryDirectory struct {
	mu    sync.RWMutex
	users map[string]models.User
	cost  int
}

func NewMemoryDirectory(opts ...Option) *MemoryDirectory {
	o := buildOptions(opts)
	return &MemoryDirectory{
		users: make(map[string]models.User),
		cost:  o.cost,
	}
}

func (d *MemoryDirectory) FindUser(_ context.Context, username string) (models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[username]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

func (d *MemoryDirectory) AddUser(_ context.Context, username, password, role string) (bool, error) {
	d.mu.RLock()
	_, exists := d.users[username]
	d.mu.RUnlock()
	if exists {
		return false, nil
	}

	// Hash outside the lock; bcrypt is slow on purpose.
	hash, err := hashPassword(password, d.cost)
	if err != nil {
		return false, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.users[username]; exists {
		return false, nil
	}
	d.users[username] = models.User{Username: username, PasswordHash: hash, Role: role}
	return true, nil
}
