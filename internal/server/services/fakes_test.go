package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/msgboard/internal/common"
	"github.com/dmitrijs2005/msgboard/internal/dbx"
	"github.com/dmitrijs2005/msgboard/internal/server/models"
	"github.com/dmitrijs2005/msgboard/internal/server/repositories/messages"
	"github.com/dmitrijs2005/msgboard/internal/server/repositories/users"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("sql expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

// sqlmockHandle queues transaction expectations. The fake repositories
// ignore the DBTX they get, so only Begin/Commit/Rollback reach the mock.
type sqlmockHandle struct {
	mock sqlmock.Sqlmock
}

func (h *sqlmockHandle) commits(n int) {
	for i := 0; i < n; i++ {
		h.mock.ExpectBegin()
		h.mock.ExpectCommit()
	}
}

func (h *sqlmockHandle) rollbacks(n int) {
	for i := 0; i < n; i++ {
		h.mock.ExpectBegin()
		h.mock.ExpectRollback()
	}
}

// --- users ---

type fakeUsersRepo struct {
	mu     sync.Mutex
	byID   map[int64]*models.User
	nextID int64

	// raceOnCreate simulates another session inserting the same login first.
	raceOnCreate bool
	getErr       error
	creates      int
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[int64]*models.User{}}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.byID {
		if existing.LoginName == u.LoginName {
			return nil, fmt.Errorf("db error: %w", &pgconn.PgError{Code: "23505"})
		}
	}
	f.nextID++
	stored := *u
	stored.ID = f.nextID
	stored.CreatedAt = time.Now()
	f.byID[stored.ID] = &stored
	f.creates++

	if f.raceOnCreate {
		f.raceOnCreate = false
		return nil, fmt.Errorf("db error: %w", &pgconn.PgError{Code: "23505"})
	}
	out := stored
	return &out, nil
}

func (f *fakeUsersRepo) GetByLoginName(_ context.Context, loginName string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byID {
		if u.LoginName == loginName {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (f *fakeUsersRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

// --- messages ---

type fakeMessagesRepo struct {
	mu     sync.Mutex
	rows   map[int64]*models.Message
	order  []int64
	nextID int64

	updateErr error
}

func newFakeMessagesRepo() *fakeMessagesRepo {
	return &fakeMessagesRepo{rows: map[int64]*models.Message{}}
}

func cloneMedia(m *models.Media) *models.Media {
	if m == nil {
		return nil
	}
	out := *m
	if m.Blob.Data != nil {
		out.Blob.Data = append([]byte(nil), m.Blob.Data...)
	}
	return &out
}

func cloneMessage(m *models.Message) *models.Message {
	out := *m
	if m.Text != nil {
		t := *m.Text
		out.Text = &t
	}
	out.Recording = cloneMedia(m.Recording)
	out.Image = cloneMedia(m.Image)
	return &out
}

func (f *fakeMessagesRepo) Create(_ context.Context, msg *models.Message) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	msg.ID = f.nextID
	msg.CreatedAt = time.Now()
	f.rows[msg.ID] = cloneMessage(msg)
	f.order = append(f.order, msg.ID)
	return msg, nil
}

func (f *fakeMessagesRepo) GetByID(_ context.Context, id int64) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, ok := f.rows[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return cloneMessage(m), nil
}

func (f *fakeMessagesRepo) GetForUpdate(ctx context.Context, id int64) (*models.Message, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeMessagesRepo) Update(_ context.Context, msg *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.rows[msg.ID]; !ok {
		return common.ErrNotFound
	}
	f.rows[msg.ID] = cloneMessage(msg)
	return nil
}

func (f *fakeMessagesRepo) list(keep func(*models.Message) bool) []*models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*models.Message
	for _, id := range f.order {
		m := f.rows[id]
		if !keep(m) {
			continue
		}
		p := cloneMessage(m)
		// projections carry filenames only
		if p.Recording != nil {
			p.Recording.Blob = models.Blob{}
		}
		if p.Image != nil {
			p.Image.Blob = models.Blob{}
		}
		out = append(out, p)
	}
	return out
}

func (f *fakeMessagesRepo) ListAll(context.Context) ([]*models.Message, error) {
	return f.list(func(*models.Message) bool { return true }), nil
}

func (f *fakeMessagesRepo) ListByOwner(_ context.Context, ownerID int64) ([]*models.Message, error) {
	return f.list(func(m *models.Message) bool { return m.OwnerID == ownerID }), nil
}

// --- manager ---

type fakeRepoManager struct {
	u *fakeUsersRepo
	m *fakeMessagesRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: newFakeUsersRepo(), m: newFakeMessagesRepo()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository               { return m.u }
func (m *fakeRepoManager) Messages(dbx.DBTX) messages.Repository         { return m.m }

// --- media store ---

type fakeObjectStore struct {
	objects map[string][]byte
	putErr  error
	n       int
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (f *fakeObjectStore) Put(_ context.Context, envelope []byte) (models.Blob, error) {
	if f.putErr != nil {
		return models.Blob{}, f.putErr
	}
	f.n++
	key := fmt.Sprintf("media/test/%d", f.n)
	f.objects[key] = append([]byte(nil), envelope...)
	return models.Blob{StorageKey: key}, nil
}

func (f *fakeObjectStore) Get(_ context.Context, blob models.Blob) ([]byte, error) {
	data, ok := f.objects[blob.StorageKey]
	if !ok {
		return nil, common.ErrNotFound
	}
	return data, nil
}

var errBoom = errors.New("boom")
