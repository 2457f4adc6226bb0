package fakeuserrepo

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-db-admin/users"
)

var _ users.StatusStore = (*FakeUserRepo)(nil)

// FakeUserRepo is an in-memory StatusStore. Reads return copies so callers
// never observe a concurrent write half way through.
type FakeUserRepo struct {
	users       map[string]*users.User
	usernameIds map[string]string // username to user id
	lock        sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users:       make(map[string]*users.User),
		usernameIds: make(map[string]string),
	}
}

func (ur *FakeUserRepo) Create(_ context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	username := users.NormalizeUsername(user.Username)
	if _, ok := ur.usernameIds[username]; ok {
		return users.ErrUsernameTaken
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.Username = username

	stored := *user
	ur.users[user.ID] = &stored
	ur.usernameIds[username] = user.ID
	return nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, users.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (ur *FakeUserRepo) GetByUsername(_ context.Context, username string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.usernameIds[users.NormalizeUsername(username)]
	if !ok {
		return nil, users.ErrNotFound
	}
	c := *ur.users[id]
	return &c, nil
}

func (ur *FakeUserRepo) SetTempSecret(_ context.Context, id, secret string) error {
	return ur.update(id, func(u *users.User) error {
		u.TempSecret2FA = secret
		return nil
	})
}

func (ur *FakeUserRepo) PromoteTempSecret(_ context.Context, id, tempSecret string, at time.Time) error {
	return ur.update(id, func(u *users.User) error {
		if tempSecret == "" || u.TempSecret2FA != tempSecret {
			return users.ErrTempSecretChanged
		}
		u.Secret2FA = u.TempSecret2FA
		u.TempSecret2FA = ""
		u.HasSetup2FA = true
		u.Is2FAVerified = true
		u.LastLoginAt = at
		return nil
	})
}

func (ur *FakeUserRepo) MarkVerified(_ context.Context, id string, at time.Time) error {
	return ur.update(id, func(u *users.User) error {
		u.Is2FAVerified = true
		u.LastLoginAt = at
		return nil
	})
}

func (ur *FakeUserRepo) ClearVerified(_ context.Context, id string) error {
	return ur.update(id, func(u *users.User) error {
		u.Is2FAVerified = false
		return nil
	})
}

func (ur *FakeUserRepo) SetTwoFactorEnabled(_ context.Context, id string, enabled bool) error {
	return ur.update(id, func(u *users.User) error {
		u.Is2FAEnabled = enabled
		return nil
	})
}

func (ur *FakeUserRepo) ResetTwoFactor(_ context.Context, id string) error {
	return ur.update(id, func(u *users.User) error {
		u.Secret2FA = ""
		u.TempSecret2FA = ""
		u.HasSetup2FA = false
		u.Is2FAVerified = false
		return nil
	})
}

// Put stores user as-is, bypassing Create's checks. Tests use it to seed
// states the strategies would never produce.
func (ur *FakeUserRepo) Put(user users.User) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user.Username = users.NormalizeUsername(user.Username)
	ur.users[user.ID] = &user
	ur.usernameIds[user.Username] = user.ID
}

func (ur *FakeUserRepo) update(id string, fn func(u *users.User) error) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return users.ErrNotFound
	}
	next := *u
	if err := fn(&next); err != nil {
		return err
	}
	ur.users[id] = &next
	return nil
}
