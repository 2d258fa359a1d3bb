package service

import (
	"context"
	"errors"
	"os"
	"time"

	"backend/internal/model"
	"backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DTOs for Request validation
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=admin trustee clerk"`
}

type UpdateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	Role     string `json:"role" binding:"omitempty,oneof=admin trustee clerk"`
}

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RegisterTrustRequest bootstraps a new trust together with its first admin
type RegisterTrustRequest struct {
	TrustName      string `json:"trust_name" binding:"required"`
	Slug           string `json:"slug" binding:"required"`
	Address        string `json:"address"`
	RegistrationNo string `json:"registration_no"`
	AdminUsername  string `json:"admin_username" binding:"required"`
	AdminEmail     string `json:"admin_email" binding:"required,email"`
	AdminPhone     string `json:"admin_phone"`
	AdminPassword  string `json:"admin_password" binding:"required,min=6"`
}

type TokenResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// DTO for returning User without exposing sensitive data (e.g. password)
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

// UserService defines the interface for business logic related to User
type UserService interface {
	RegisterTrust(ctx context.Context, req RegisterTrustRequest) (*UserResponse, error)
	CreateUser(ctx context.Context, trustID uuid.UUID, req CreateUserRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	GetUserByID(ctx context.Context, trustID uuid.UUID, id string) (*UserResponse, error)
	ListUsers(ctx context.Context, trustID uuid.UUID, page, limit int) ([]UserResponse, int64, error)
	UpdateUser(ctx context.Context, trustID uuid.UUID, id string, req UpdateUserRequest) (*UserResponse, error)
	DeleteUser(ctx context.Context, trustID uuid.UUID, id string) error
}

type userService struct {
	repo      repository.UserRepository
	trustRepo repository.TrustRepository
}

// NewUserService returns a new instance of UserService
func NewUserService(repo repository.UserRepository, trustRepo repository.TrustRepository) UserService {
	return &userService{repo: repo, trustRepo: trustRepo}
}

// Helper: parse model to standard json API response
func mapToResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: user.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// RegisterTrust creates a new trust row and its first admin account in one
// call. Slug uniqueness is the only onboarding guard.
func (s *userService) RegisterTrust(ctx context.Context, req RegisterTrustRequest) (*UserResponse, error) {
	if _, err := s.trustRepo.FindBySlug(ctx, req.Slug); err == nil {
		return nil, errors.New("trust slug already taken")
	}

	trust := &model.Trust{
		Name:           req.TrustName,
		Slug:           req.Slug,
		Address:        req.Address,
		RegistrationNo: req.RegistrationNo,
		IsActive:       true,
	}
	if err := s.trustRepo.Create(ctx, trust); err != nil {
		return nil, errors.New("failed to create trust")
	}

	return s.CreateUser(ctx, trust.ID, CreateUserRequest{
		Username: req.AdminUsername,
		Email:    req.AdminEmail,
		Phone:    req.AdminPhone,
		Password: req.AdminPassword,
		Role:     model.RoleAdmin,
	})
}

func (s *userService) CreateUser(ctx context.Context, trustID uuid.UUID, req CreateUserRequest) (*UserResponse, error) {
	// Double check username/email uniqueness via repo directly
	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, errors.New("username already exists")
	}

	if _, err := s.repo.GetByEmail(ctx, req.Email); err == nil {
		return nil, errors.New("email already exists")
	}

	// Hash password automatically
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &model.User{
		TrustID:  trustID,
		Username: req.Username,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: string(hashedPassword),
		Role:     req.Role, // Guaranteed valid by the oneof binding
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return mapToResponse(user), nil
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*TokenResponse, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, errors.New("invalid email or password")
	}

	tokenString, err := signAccessToken(user)
	if err != nil {
		return nil, err
	}

	refresh := &model.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}
	if err := s.repo.CreateRefreshToken(ctx, refresh); err != nil {
		return nil, errors.New("failed to store refresh token")
	}

	return &TokenResponse{Token: tokenString, RefreshToken: refresh.Token}, nil
}

// Refresh exchanges a valid refresh token for a fresh access token. The
// refresh token is rotated: the presented one is revoked and a new one
// issued, so a replayed token fails on the second use.
func (s *userService) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	stored, err := s.repo.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, errors.New("invalid refresh token")
	}
	if time.Now().After(stored.ExpiresAt) {
		_ = s.repo.DeleteRefreshToken(ctx, refreshToken)
		return nil, errors.New("refresh token expired")
	}

	tokenString, err := signAccessToken(&stored.User)
	if err != nil {
		return nil, err
	}

	rotated := &model.RefreshToken{
		UserID:    stored.UserID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}
	if err := s.repo.CreateRefreshToken(ctx, rotated); err != nil {
		return nil, errors.New("failed to rotate refresh token")
	}
	_ = s.repo.DeleteRefreshToken(ctx, refreshToken)

	return &TokenResponse{Token: tokenString, RefreshToken: rotated.Token}, nil
}

func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	return s.repo.DeleteRefreshToken(ctx, refreshToken)
}

// signAccessToken issues a JWT carrying the user's trust so handlers can
// scope every query without extra lookups
func signAccessToken(user *model.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      user.ID.String(),
		"role":     user.Role,
		"trust_id": user.TrustID.String(),
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	})

	// Use same fallback strategy as middleware for simplicity here or get from env centrally
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_super_secret_key"
	}

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", errors.New("failed to generate token")
	}
	return tokenString, nil
}

// findTrustUser resolves an account id and verifies it belongs to the
// caller's trust; a foreign trust's user is indistinguishable from a
// missing one.
func (s *userService) findTrustUser(ctx context.Context, trustID uuid.UUID, id string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.New("user not found")
	}
	if user.TrustID != trustID {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, trustID uuid.UUID, id string) (*UserResponse, error) {
	user, err := s.findTrustUser(ctx, trustID, id)
	if err != nil {
		return nil, err
	}
	return mapToResponse(user), nil
}

func (s *userService) ListUsers(ctx context.Context, trustID uuid.UUID, page, limit int) ([]UserResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	users, total, err := s.repo.List(ctx, trustID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]UserResponse, 0, len(users))
	for i := range users {
		res = append(res, *mapToResponse(&users[i]))
	}

	return res, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, trustID uuid.UUID, id string, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.findTrustUser(ctx, trustID, id)
	if err != nil {
		return nil, err
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Role != "" {
		user.Role = req.Role
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return mapToResponse(user), nil
}

func (s *userService) DeleteUser(ctx context.Context, trustID uuid.UUID, id string) error {
	if _, err := s.findTrustUser(ctx, trustID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
