package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wonderfulrabbits/rabbitsapi/internal/common"
	"github.com/wonderfulrabbits/rabbitsapi/internal/dbx"
	"github.com/wonderfulrabbits/rabbitsapi/internal/logging"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/auth"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/blobstore"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/models"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/repositories/repomanager"
	"go.opentelemetry.io/otel/attribute"
)

// AuthResult is returned by a successful Authenticate.
type AuthResult struct {
	User  models.UserSummary
	Token string
}

// UserService provides account operations:
// - Register / Authenticate: create users and verify credentials
// - List / Get / Update / Delete: manage existing accounts
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	tokens      *auth.TokenCodec
	blobs       blobstore.Store
	log         logging.Logger

	// dummyDigest is verified against when the username is unknown so
	// both failure paths cost one bcrypt comparison.
	dummyDigest string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher,
	tokens *auth.TokenCodec, blobs blobstore.Store, log logging.Logger) *UserService {

	dummy, err := hasher.Hash("rabbits-dummy-password")
	if err != nil {
		log.Warn(context.Background(), "dummy digest not computed", "error", err)
	}

	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		blobs:       blobs,
		log:         log,
		dummyDigest: dummy,
	}
}

// Register creates an account. A taken username yields
// common.ErrDuplicateUsername and leaves the existing record untouched.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "UserService.Register")
	defer span.End()

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	exists, err := repo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("error checking username: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", common.ErrDuplicateUsername, req.Username)
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	u, err := repo.Create(ctx, &models.User{Username: req.Username, Email: req.Email, PasswordHash: digest})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) {
			return nil, fmt.Errorf("%w: %s", common.ErrDuplicateUsername, req.Username)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	span.SetAttributes(attribute.Int64("user.id", u.ID))
	s.log.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Authenticate verifies credentials and issues an access token. Unknown
// usernames and wrong passwords fail identically with
// common.ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "UserService.Authenticate")
	defer span.End()

	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummyDigest)
			return nil, common.ErrInvalidCredentials
		}
		s.log.Error(ctx, "credential lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.log.Error(ctx, "token issue failed", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}

	span.SetAttributes(attribute.Int64("user.id", user.ID))
	return &AuthResult{User: user.Summary(), Token: token}, nil
}

func (s *UserService) List(ctx context.Context) ([]models.UserSummary, error) {
	users, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, u.Summary())
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.UserSummary, error) {
	u, err := s.repomanager.Users(s.db).FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	summary := u.Summary()
	return &summary, nil
}

// Update applies the present fields. A new password is re-hashed; a new
// username must not belong to someone else.
func (s *UserService) Update(ctx context.Context, id int64, req UpdateUserRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if req.Username != nil && *req.Username != user.Username {
		exists, err := repo.ExistsByUsername(ctx, *req.Username)
		if err != nil {
			return fmt.Errorf("error checking username: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: %s", common.ErrDuplicateUsername, *req.Username)
		}
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		digest, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = digest
	}

	if err := repo.Update(ctx, user); err != nil {
		if errors.Is(err, common.ErrDuplicateUsername) || errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error updating user: %w", err)
	}
	return nil
}

// Delete removes the user with their rabbits, photos and images. Image
// blobs are removed after the transaction commits.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	ctx, span := tracer.Start(ctx, "UserService.Delete")
	defer span.End()

	var keys []string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		keys, err = s.repomanager.Images(tx).StorageKeysByUser(ctx, id)
		if err != nil {
			return err
		}
		return s.repomanager.Users(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	removeBlobs(ctx, s.blobs, s.log, keys)
	s.log.Info(ctx, "user deleted", "user_id", id, "blobs", len(keys))
	return nil
}
