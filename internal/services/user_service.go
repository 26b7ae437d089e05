package services

import (
	"context"
	"errors"

	"resto-backend/internal/auth"
	"resto-backend/internal/cache"
	"resto-backend/internal/models"
	"resto-backend/internal/repositories"
)

type UserService struct {
	Repo       *repositories.UserRepository
	JWTManager *auth.JWTManager
}

func NewUserService(repo *repositories.UserRepository, jwtManager *auth.JWTManager) *UserService {
	return &UserService{
		Repo:       repo,
		JWTManager: jwtManager,
	}
}

func (s *UserService) CreateUser(ctx context.Context, restaurantID int, req *models.CreateUserRequest) (*models.User, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, errors.New("name, email, and password are required")
	}
	if existing, _ := s.Repo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, errors.New("user with this email already exists")
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		RestaurantID: restaurantID,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hashedPassword,
		Role:         req.Role,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	return s.Repo.Get(ctx, id)
}

// ListUsers returns a restaurant's users
func (s *UserService) ListUsers(ctx context.Context, restaurantID int) ([]*models.User, error) {
	return s.Repo.List(ctx, restaurantID)
}

// UpdateUser updates an existing user
func (s *UserService) UpdateUser(ctx context.Context, id int, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}

	user.Name = req.Name
	user.Email = req.Email
	user.Phone = req.Phone
	user.Role = req.Role
	user.PasswordHash = ""
	if req.Password != "" {
		hashedPassword, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashedPassword
	}
	if err := s.Repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ToggleActive flips a user's active flag
func (s *UserService) ToggleActive(ctx context.Context, id int, active bool) error {
	return s.Repo.ToggleActiveStatus(ctx, id, active)
}

// Login authenticates a user and returns a JWT token. Admin accounts with
// 2FA enabled get a temp token back instead; the caller must complete the
// second step with a TOTP code.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, *models.TwoFactorPendingResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, nil, errors.New("email and password are required")
	}

	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, nil, err
	}

	if user.TOTPEnabled {
		tempToken, err := s.JWTManager.GenerateTempToken(user)
		if err != nil {
			return nil, nil, err
		}
		return nil, &models.TwoFactorPendingResponse{Requires2FA: true, TempToken: tempToken}, nil
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil, nil
}

// authenticate verifies credentials, consulting the Redis auth cache first
// so repeated logins skip the bcrypt compare
func (s *UserService) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if userID, ok := cache.GetCachedAuth(ctx, email, password); ok {
		user, err := s.Repo.Get(ctx, int(userID))
		if err == nil && user != nil && user.IsActive {
			return user, nil
		}
	}

	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, errors.New("invalid email or password")
	}
	if !user.IsActive {
		return nil, errors.New("account is disabled")
	}

	cache.CacheAuth(ctx, email, password, int64(user.ID))
	return user, nil
}

// IssueToken generates a full session token for an already-verified user
func (s *UserService) IssueToken(user *models.User) (*models.AuthResponse, error) {
	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}
