package rest

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/wonderfulrabbits/rabbitsapi/internal/common"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/auth"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/models"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/services"
)

// fakeUsers keeps users in memory; passwords are stored in clear text.
type fakeUsers struct {
	mu     sync.Mutex
	next   int64
	byID   map[int64]*models.User
	codec  *auth.TokenCodec
	err    error
	panics bool
}

func newFakeUsers(codec *auth.TokenCodec) *fakeUsers {
	return &fakeUsers{byID: map[int64]*models.User{}, codec: codec}
}

func (f *fakeUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) byName(name string) *models.User {
	for _, u := range f.byID {
		if u.Username == name {
			return u
		}
	}
	return nil
}

func (f *fakeUsers) Register(_ context.Context, req services.RegisterRequest) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Username == "" {
		return nil, errors.Join(common.ErrValidation, errors.New("username is required"))
	}
	if f.byName(req.Username) != nil {
		return nil, common.ErrDuplicateUsername
	}
	f.next++
	u := &models.User{ID: f.next, Username: req.Username, Email: req.Email, PasswordHash: req.Password}
	f.byID[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Authenticate(_ context.Context, username, password string) (*services.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.byName(username)
	if u == nil || u.PasswordHash != password {
		return nil, common.ErrInvalidCredentials
	}
	token, err := f.codec.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &services.AuthResult{User: u.Summary(), Token: token}, nil
}

func (f *fakeUsers) List(_ context.Context) ([]models.UserSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panics {
		panic("list exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	ids := make([]int64, 0, len(f.byID))
	for id := range f.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]models.UserSummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, f.byID[id].Summary())
	}
	return out, nil
}

func (f *fakeUsers) Get(ctx context.Context, id int64) (*models.UserSummary, error) {
	u, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s := u.Summary()
	return &s, nil
}

func (f *fakeUsers) Update(_ context.Context, id int64, req services.UpdateUserRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeRabbits struct {
	mu    sync.Mutex
	users *fakeUsers
	byID  map[int64]*models.Rabbit
}

func (f *fakeRabbits) Register(ctx context.Context, req services.RegisterRabbitRequest, caller *models.User) (*models.Rabbit, error) {
	owner := caller.ID
	if req.UserID != nil {
		owner = *req.UserID
	}
	if _, err := f.users.FindByID(ctx, owner); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r := &models.Rabbit{ID: int64(len(f.byID) + 1), Name: req.Name, Birthdate: req.Birthdate, UserID: owner}
	f.byID[r.ID] = r
	return r, nil
}

func (f *fakeRabbits) view(ctx context.Context, r *models.Rabbit) *models.RabbitView {
	v := &models.RabbitView{ID: r.ID, Name: r.Name, Birthdate: r.Birthdate}
	if u, err := f.users.FindByID(ctx, r.UserID); err == nil {
		v.Owner = u.Summary()
	}
	return v
}

func (f *fakeRabbits) Get(ctx context.Context, id int64) (*models.RabbitView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return f.view(ctx, r), nil
}

func (f *fakeRabbits) List(ctx context.Context) ([]*models.RabbitView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.RabbitView, 0, len(f.byID))
	for id := int64(1); id <= int64(len(f.byID)); id++ {
		if r, ok := f.byID[id]; ok {
			out = append(out, f.view(ctx, r))
		}
	}
	return out, nil
}

func (f *fakeRabbits) Update(_ context.Context, id int64, req services.UpdateRabbitRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	if req.Name != nil {
		r.Name = *req.Name
	}
	return nil
}

func (f *fakeRabbits) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byID, id)
	return nil
}

var fixedTime = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

type fakePhotos struct {
	photos []*models.Photo
}

func (f *fakePhotos) Upload(_ context.Context, req services.UploadPhotoRequest) (*models.Photo, error) {
	p := &models.Photo{ID: int64(len(f.photos) + 1), RabbitID: req.RabbitID, Title: req.Title, ImageData: []byte(req.ImageData), DateAdded: fixedTime}
	f.photos = append(f.photos, p)
	return p, nil
}

func (f *fakePhotos) Get(_ context.Context, id int64) (*models.Photo, error) {
	if id < 1 || id > int64(len(f.photos)) {
		return nil, common.ErrorNotFound
	}
	return f.photos[id-1], nil
}

func (f *fakePhotos) List(context.Context) ([]*models.Photo, error) { return f.photos, nil }

type fakeImages struct {
	images []*models.Image
	data   map[int64][]byte
}

func (f *fakeImages) Upload(_ context.Context, req services.UploadImageRequest) (*models.Image, error) {
	img := &models.Image{
		ID:            int64(len(f.images) + 1),
		RabbitID:      req.RabbitID,
		Title:         req.Title,
		FileName:      req.FileName,
		FileExtension: ".png",
		ContentType:   "image/png",
		StorageKey:    "images/k",
		Size:          3,
		DateAdded:     fixedTime,
	}
	f.images = append(f.images, img)
	f.data[img.ID] = []byte{1, 2, 3}
	return img, nil
}

func (f *fakeImages) Get(_ context.Context, id int64) (*models.Image, []byte, error) {
	if id < 1 || id > int64(len(f.images)) {
		return nil, nil, common.ErrorNotFound
	}
	return f.images[id-1], f.data[id], nil
}

func (f *fakeImages) List(context.Context) ([]services.ImageView, error) {
	out := make([]services.ImageView, 0, len(f.images))
	for _, img := range f.images {
		out = append(out, services.ImageView{Image: img, URL: "https://blobs.example/" + img.StorageKey})
	}
	return out, nil
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }
