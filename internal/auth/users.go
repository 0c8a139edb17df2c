package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mjaworski/window-offers/internal/apperrors"
	"github.com/mjaworski/window-offers/internal/models"
	"github.com/mjaworski/window-offers/internal/validation"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type UserCreateInput struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *UserService) Create(ctx context.Context, in UserCreateInput) (*models.User, error) {
	v := validation.Violations{}
	validation.Required("email", in.Email, v)
	validation.Required("full_name", in.FullName, v)
	validation.MinLen("password", in.Password, 8, v)
	if !v.Empty() {
		return nil, apperrors.Validation("validation_failed", v)
	}
	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := models.User{Email: in.Email, FullName: in.FullName, HashedPassword: hash, Role: role, IsActive: true}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict("email_already_registered")
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user_not_found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user_not_found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// UserUpdateInput is an admin-only partial update.
type UserUpdateInput struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

func (s *UserService) Update(ctx context.Context, id uint, in UserUpdateInput) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if in.Email != nil {
		updates["email"] = *in.Email
	}
	if in.FullName != nil {
		updates["full_name"] = *in.FullName
	}
	if in.Role != nil {
		if *in.Role != models.RoleUser && *in.Role != models.RoleAdmin {
			return nil, apperrors.Validation("validation_failed", validation.Violations{"role": "invalid"})
		}
		updates["role"] = *in.Role
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.Conflict("email_already_registered")
			}
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

// ChangePassword verifies the current password before setting a new one.
func (s *UserService) ChangePassword(ctx context.Context, userID uint, current, newPassword string) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !CheckPassword(user.HashedPassword, current) {
		return apperrors.Validation("incorrect_password", nil)
	}
	v := validation.Violations{}
	validation.MinLen("new_password", newPassword, 8, v)
	if !v.Empty() {
		return apperrors.Validation("validation_failed", v)
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(user).Update("hashed_password", hash).Error
}

// Authenticate checks credentials for login; inactive users are rejected.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Validation("invalid_credentials", nil)
	}
	if !user.IsActive || !CheckPassword(user.HashedPassword, password) {
		return nil, apperrors.Validation("invalid_credentials", nil)
	}
	return user, nil
}
