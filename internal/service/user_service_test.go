package service

import (
	"context"
	"testing"

	"backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- Fakes ---

type fakeUserRepo struct {
	users   []model.User
	refresh map[string]model.RefreshToken
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{refresh: map[string]model.RefreshToken{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	for i := range f.users {
		if f.users[i].ID.String() == id {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for i := range f.users {
		if f.users[i].Email == email {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for i := range f.users {
		if f.users[i].Username == username {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) List(_ context.Context, trustID uuid.UUID, _, _ int) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range f.users {
		if u.TrustID == trustID {
			out = append(out, u)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	for i := range f.users {
		if f.users[i].ID == user.ID {
			f.users[i] = *user
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	for i := range f.users {
		if f.users[i].ID.String() == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) CreateRefreshToken(_ context.Context, token *model.RefreshToken) error {
	if token.ID == uuid.Nil {
		token.ID = uuid.New()
	}
	f.refresh[token.Token] = *token
	return nil
}

func (f *fakeUserRepo) GetRefreshToken(_ context.Context, token string) (*model.RefreshToken, error) {
	stored, ok := f.refresh[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for _, u := range f.users {
		if u.ID == stored.UserID {
			stored.User = u
			break
		}
	}
	return &stored, nil
}

func (f *fakeUserRepo) DeleteRefreshToken(_ context.Context, token string) error {
	delete(f.refresh, token)
	return nil
}

type fakeTrustRepo struct {
	trusts []model.Trust
}

func (f *fakeTrustRepo) Create(_ context.Context, trust *model.Trust) error {
	if trust.ID == uuid.Nil {
		trust.ID = uuid.New()
	}
	f.trusts = append(f.trusts, *trust)
	return nil
}

func (f *fakeTrustRepo) FindBySlug(_ context.Context, slug string) (*model.Trust, error) {
	for i := range f.trusts {
		if f.trusts[i].Slug == slug {
			t := f.trusts[i]
			return &t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// --- Fixture ---

type userServiceFixture struct {
	svc      UserService
	userRepo *fakeUserRepo
	trustID  uuid.UUID
}

func newUserServiceFixture() *userServiceFixture {
	f := &userServiceFixture{
		userRepo: newFakeUserRepo(),
		trustID:  uuid.New(),
	}
	f.svc = NewUserService(f.userRepo, &fakeTrustRepo{})
	return f
}

func (f *userServiceFixture) seedUser(t *testing.T, trustID uuid.UUID, username, email string) *model.User {
	t.Helper()
	user := &model.User{
		TrustID:  trustID,
		Username: username,
		Email:    email,
		Phone:    "000",
		Password: "irrelevant",
		Role:     model.RoleClerk,
	}
	require.NoError(t, f.userRepo.Create(context.Background(), user))
	return user
}

// --- Tests ---

func TestUserLookupScopedToTrust(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	own := f.seedUser(t, f.trustID, "own-clerk", "own@example.com")
	foreignTrust := uuid.New()
	foreign := f.seedUser(t, foreignTrust, "foreign-clerk", "foreign@example.com")

	// Own trust's account resolves normally.
	got, err := f.svc.GetUserByID(ctx, f.trustID, own.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "own-clerk", got.Username)

	// Another trust's account is indistinguishable from a missing one.
	_, err = f.svc.GetUserByID(ctx, f.trustID, foreign.ID.String())
	assert.EqualError(t, err, "user not found")

	_, err = f.svc.UpdateUser(ctx, f.trustID, foreign.ID.String(), UpdateUserRequest{Username: "hijacked"})
	assert.EqualError(t, err, "user not found")

	err = f.svc.DeleteUser(ctx, f.trustID, foreign.ID.String())
	assert.EqualError(t, err, "user not found")

	// The foreign account is untouched by the failed update and delete.
	kept, err := f.userRepo.GetByID(ctx, foreign.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "foreign-clerk", kept.Username)
}

func TestListUsersScopedToTrust(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	f.seedUser(t, f.trustID, "clerk-a", "a@example.com")
	f.seedUser(t, f.trustID, "clerk-b", "b@example.com")
	f.seedUser(t, uuid.New(), "outsider", "out@example.com")

	users, total, err := f.svc.ListUsers(ctx, f.trustID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.NotEqual(t, "outsider", u.Username)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newUserServiceFixture()
	ctx := context.Background()

	_, err := f.svc.CreateUser(ctx, f.trustID, CreateUserRequest{
		Username: "admin",
		Email:    "admin@example.com",
		Phone:    "000",
		Password: "secret-pass",
		Role:     model.RoleAdmin,
	})
	require.NoError(t, err)

	login, err := f.svc.Login(ctx, LoginUserRequest{Email: "admin@example.com", Password: "secret-pass"})
	require.NoError(t, err)
	require.NotEmpty(t, login.RefreshToken)

	refreshed, err := f.svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The presented token was revoked; replaying it fails.
	_, err = f.svc.Refresh(ctx, login.RefreshToken)
	assert.EqualError(t, err, "invalid refresh token")

	// The rotated token keeps working.
	_, err = f.svc.Refresh(ctx, refreshed.RefreshToken)
	assert.NoError(t, err)
}
