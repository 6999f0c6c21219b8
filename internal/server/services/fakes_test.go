package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/wonderfulrabbits/rabbitsapi/internal/common"
	"github.com/wonderfulrabbits/rabbitsapi/internal/dbx"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/blobstore"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/models"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/repositories/images"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/repositories/photos"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/repositories/rabbits"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// memStore is an in-memory stand-in for the four tables, including the
// unique username index and cascading deletes.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	users   map[int64]*models.User
	rabbits map[int64]*models.Rabbit
	photos  map[int64]*models.Photo
	images  map[int64]*models.Image

	// forced failures
	usersErr  error
	imagesErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[int64]*models.User{},
		rabbits: map[int64]*models.Rabbit{},
		photos:  map[int64]*models.Photo{},
		images:  map[int64]*models.Image{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func sortedKeys[V any](mp map[int64]V) []int64 {
	ids := make([]int64, 0, len(mp))
	for id := range mp {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

type memUsers struct{ m *memStore }

func (r memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.usersErr != nil {
		return nil, r.m.usersErr
	}
	for _, existing := range r.m.users {
		if existing.Username == u.Username {
			return nil, common.ErrDuplicateUsername
		}
	}
	cp := *u
	cp.ID = r.m.id()
	cp.CreatedAt = time.Now()
	r.m.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.usersErr != nil {
		return nil, r.m.usersErr
	}
	u, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r memUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.usersErr != nil {
		return nil, r.m.usersErr
	}
	for _, u := range r.m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	if err == nil {
		return true, nil
	}
	if err == common.ErrorNotFound {
		return false, nil
	}
	return false, err
}

func (r memUsers) List(_ context.Context) ([]*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.User, 0, len(r.m.users))
	for _, id := range sortedKeys(r.m.users) {
		cp := *r.m.users[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r memUsers) Update(_ context.Context, u *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[u.ID]; !ok {
		return common.ErrorNotFound
	}
	for id, existing := range r.m.users {
		if id != u.ID && existing.Username == u.Username {
			return common.ErrDuplicateUsername
		}
	}
	cp := *u
	r.m.users[u.ID] = &cp
	return nil
}

func (r memUsers) Delete(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.users, id)
	for rid, rb := range r.m.rabbits {
		if rb.UserID == id {
			r.m.deleteRabbitLocked(rid)
		}
	}
	return nil
}

func (m *memStore) deleteRabbitLocked(id int64) {
	delete(m.rabbits, id)
	for pid, p := range m.photos {
		if p.RabbitID == id {
			delete(m.photos, pid)
		}
	}
	for iid, img := range m.images {
		if img.RabbitID == id {
			delete(m.images, iid)
		}
	}
}

type memRabbits struct{ m *memStore }

func (r memRabbits) Create(_ context.Context, rb *models.Rabbit) (*models.Rabbit, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[rb.UserID]; !ok {
		return nil, common.ErrorNotFound
	}
	cp := *rb
	cp.ID = r.m.id()
	r.m.rabbits[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memRabbits) FindByID(_ context.Context, id int64) (*models.Rabbit, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	rb, ok := r.m.rabbits[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *rb
	return &cp, nil
}

func (r memRabbits) view(rb *models.Rabbit) *models.RabbitView {
	owner := r.m.users[rb.UserID]
	return &models.RabbitView{ID: rb.ID, Name: rb.Name, Birthdate: rb.Birthdate, Owner: owner.Summary()}
}

func (r memRabbits) GetView(_ context.Context, id int64) (*models.RabbitView, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	rb, ok := r.m.rabbits[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.view(rb), nil
}

func (r memRabbits) ListViews(_ context.Context) ([]*models.RabbitView, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.RabbitView, 0, len(r.m.rabbits))
	for _, id := range sortedKeys(r.m.rabbits) {
		out = append(out, r.view(r.m.rabbits[id]))
	}
	return out, nil
}

func (r memRabbits) Update(_ context.Context, rb *models.Rabbit) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.rabbits[rb.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *rb
	r.m.rabbits[rb.ID] = &cp
	return nil
}

func (r memRabbits) Delete(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.rabbits[id]; !ok {
		return common.ErrorNotFound
	}
	r.m.deleteRabbitLocked(id)
	return nil
}

type memPhotos struct{ m *memStore }

func (r memPhotos) Create(_ context.Context, p *models.Photo) (*models.Photo, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *p
	cp.ID = r.m.id()
	cp.DateAdded = time.Now()
	r.m.photos[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memPhotos) FindByID(_ context.Context, id int64) (*models.Photo, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p, ok := r.m.photos[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (r memPhotos) List(_ context.Context) ([]*models.Photo, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.Photo, 0, len(r.m.photos))
	for _, id := range sortedKeys(r.m.photos) {
		cp := *r.m.photos[id]
		out = append(out, &cp)
	}
	return out, nil
}

type memImages struct{ m *memStore }

func (r memImages) Create(_ context.Context, img *models.Image) (*models.Image, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.imagesErr != nil {
		return nil, r.m.imagesErr
	}
	cp := *img
	cp.ID = r.m.id()
	cp.DateAdded = time.Now()
	r.m.images[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r memImages) FindByID(_ context.Context, id int64) (*models.Image, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	img, ok := r.m.images[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *img
	return &cp, nil
}

func (r memImages) List(_ context.Context) ([]*models.Image, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.Image, 0, len(r.m.images))
	for _, id := range sortedKeys(r.m.images) {
		cp := *r.m.images[id]
		out = append(out, &cp)
	}
	return out, nil
}

func (r memImages) StorageKeysByRabbit(_ context.Context, rabbitID int64) ([]string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.imagesErr != nil {
		return nil, r.m.imagesErr
	}
	var keys []string
	for _, id := range sortedKeys(r.m.images) {
		if img := r.m.images[id]; img.RabbitID == rabbitID {
			keys = append(keys, img.StorageKey)
		}
	}
	return keys, nil
}

func (r memImages) StorageKeysByUser(_ context.Context, userID int64) ([]string, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.imagesErr != nil {
		return nil, r.m.imagesErr
	}
	var keys []string
	for _, id := range sortedKeys(r.m.images) {
		img := r.m.images[id]
		if rb, ok := r.m.rabbits[img.RabbitID]; ok && rb.UserID == userID {
			keys = append(keys, img.StorageKey)
		}
	}
	return keys, nil
}

type fakeRepoManager struct{ m *memStore }

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Users(dbx.DBTX) users.Repository               { return memUsers{f.m} }
func (f *fakeRepoManager) Rabbits(dbx.DBTX) rabbits.Repository           { return memRabbits{f.m} }
func (f *fakeRepoManager) Photos(dbx.DBTX) photos.Repository             { return memPhotos{f.m} }
func (f *fakeRepoManager) Images(dbx.DBTX) images.Repository             { return memImages{f.m} }

// memBlobs is a blobstore.Store; withSigner adds URL signing.
type memBlobs struct {
	mu      sync.Mutex
	data    map[string][]byte
	putErr  error
	deleted []string
}

func newMemBlobs() *memBlobs { return &memBlobs{data: map[string][]byte{}} }

func (b *memBlobs) Put(_ context.Context, key string, data []byte, _ string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.putErr != nil {
		return b.putErr
	}
	b.data[key] = data
	return nil
}

func (b *memBlobs) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.data[key]
	if !ok {
		return nil, blobstore.ErrNotFound
	}
	return d, nil
}

func (b *memBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, key)
	b.deleted = append(b.deleted, key)
	return nil
}

type signingBlobs struct {
	*memBlobs
	err error
}

func (s signingBlobs) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "https://blobs.example/" + key + "?ttl=" + ttl.String(), nil
}

// tiny valid images
var (
	pngBytes = []byte{
		0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
		0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
		0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
		0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4, 0x89,
	}
	gifBytes = []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
)

type racingRepoManager struct{ fakeRepoManager }

func (r *racingRepoManager) Users(dbx.DBTX) users.Repository { return racingUsers{memUsers{r.m}} }
