package service

import (
	"context"
	"errors"
	"sync"

	"backend/internal/models"
	"backend/internal/oauth"
	"backend/internal/repository"
)

// fakeUserRepo is an in-memory repository.UserRepository enforcing the
// same uniqueness rules as the real store.
type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int64
	users map[int64]*models.User

	// missEmailLookups makes the next N GetByEmail calls miss even when
	// the row exists, simulating a concurrent insert landing between a
	// lookup and the following Create.
	missEmailLookups int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*models.User)}
}

func (r *fakeUserRepo) Create(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return repository.ErrDuplicate
		}
	}

	r.seq++
	user.ID = r.seq
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		clone := *user
		return &clone, nil
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByUsername(username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.missEmailLookups > 0 {
		r.missEmailLookups--
		return nil, repository.ErrNotFound
	}
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) SetVerified(id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return false, nil
	}
	user.Verified = true
	return true, nil
}

func (r *fakeUserRepo) UpdateProfile(id int64, name, email string, img, passwordHash *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	for otherID, other := range r.users {
		if otherID != id && other.Email == email {
			return repository.ErrDuplicate
		}
	}
	user.Name = name
	user.Email = email
	user.Img = img
	if passwordHash != nil {
		user.PasswordHash = passwordHash
	}
	return nil
}

func (r *fakeUserRepo) Delete(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	fail bool
}

func (m *fakeMailer) Send(to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp: connection refused")
	}
	m.sent = append(m.sent, sentMail{to: to, subject: subject, body: htmlBody})
	return nil
}

type fakeGoogle struct {
	email string
	name  string
	err   error
}

func (g *fakeGoogle) Exchange(_ context.Context, code string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	return "id-token-for-" + code, nil
}

func (g *fakeGoogle) VerifyIDToken(_ context.Context, _ string) (*oauth.Profile, error) {
	if g.err != nil {
		return nil, g.err
	}
	return &oauth.Profile{Email: g.email, Name: g.name}, nil
}
