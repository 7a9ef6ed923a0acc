package mocks

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskmanager-api/internal/domain"
)

type tokenRecord struct {
	userID    uuid.UUID
	token     string
	expiresAt time.Time
}

type taskRecord struct {
	task *domain.Task
	seq  int64
}

// Database is the shared in-memory state behind the mock stores.
type Database struct {
	mu      sync.Mutex
	seq     int64
	users   map[uuid.UUID]*domain.User
	avatars map[uuid.UUID][]byte
	tokens  []tokenRecord
	tasks   map[uuid.UUID]*taskRecord
}

// NewDatabase returns an empty Database.
func NewDatabase() *Database {
	return &Database{
		users:   make(map[uuid.UUID]*domain.User),
		avatars: make(map[uuid.UUID][]byte),
		tasks:   make(map[uuid.UUID]*taskRecord),
	}
}

// UserCount returns the number of stored users.
func (d *Database) UserCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.users)
}

// TaskCount returns the number of stored tasks across all owners.
func (d *Database) TaskCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}

// TokenCount returns the number of stored session tokens for userID.
func (d *Database) TokenCount(userID uuid.UUID) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, rec := range d.tokens {
		if rec.userID == userID {
			n++
		}
	}
	return n
}

// nextSeq must be called with mu held.
func (d *Database) nextSeq() int64 {
	d.seq++
	return d.seq
}

// deleteUser removes a user and everything that references it.
// Must be called with mu held.
func (d *Database) deleteUser(id uuid.UUID) {
	delete(d.users, id)
	delete(d.avatars, id)

	kept := d.tokens[:0]
	for _, rec := range d.tokens {
		if rec.userID != id {
			kept = append(kept, rec)
		}
	}
	d.tokens = kept

	for taskID, rec := range d.tasks {
		if rec.task.OwnerID == id {
			delete(d.tasks, taskID)
		}
	}
}

func copyUser(u *domain.User) *domain.User {
	c := *u
	c.Avatar = nil
	return &c
}

func copyTask(t *domain.Task) *domain.Task {
	c := *t
	return &c
}
