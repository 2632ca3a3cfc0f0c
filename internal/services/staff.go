package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/diewo77/go-orcamentos/auth"
	"github.com/diewo77/go-orcamentos/internal/models"
	"github.com/diewo77/go-orcamentos/internal/policy"
	"github.com/diewo77/go-orcamentos/validation"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserInput struct {
	Username              string          `json:"username"`
	Email                 string          `json:"email"`
	Name                  string          `json:"name"`
	Password              string          `json:"password"`
	Role                  models.Role     `json:"role"`
	Phone                 string          `json:"phone"`
	IndividualTargetValue decimal.Decimal `json:"individual_target_value"`
}

// StaffService authenticates staff and issues discount authorizations.
type StaffService struct {
	DB       *gorm.DB
	GrantTTL time.Duration
	Now      func() time.Time
}

func NewStaffService(db *gorm.DB, grantTTL time.Duration) *StaffService {
	return &StaffService{DB: db, GrantTTL: grantTTL, Now: time.Now}
}

// CreateUser stores an active user with a bcrypt hashed password.
func (s *StaffService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	v := validation.Violations{}
	validation.Required("username", in.Username, v)
	validation.Required("password", in.Password, v)
	validation.Email("email", in.Email, v)
	if policy.ProfileFor(in.Role) == nil {
		v["role"] = "invalid_choice"
	}
	if !v.Empty() {
		return nil, violationsError(v)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := models.User{
		Username:              strings.TrimSpace(in.Username),
		Email:                 strings.TrimSpace(in.Email),
		Name:                  strings.TrimSpace(in.Name),
		Password:              string(hash),
		Role:                  in.Role,
		Phone:                 in.Phone,
		IsActive:              true,
		IndividualTargetValue: in.IndividualTargetValue,
	}
	var taken int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("username = ?", u.Username).Count(&taken).Error; err != nil {
		return nil, translateDBError(err)
	}
	if taken > 0 {
		return nil, &DomainError{Err: ErrValidation, Fields: map[string]string{"username": "already_taken"}}
	}
	if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, translateDBError(err)
	}
	return &u, nil
}

// Authenticate checks the password of an active user.
func (s *StaffService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	var u models.User
	err := s.DB.WithContext(ctx).Where("username = ? AND is_active = ?", strings.TrimSpace(username), true).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, translateDBError(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// AuthorizeDiscount re-authenticates an admin or owner and returns a signed grant for up to pct.
func (s *StaffService) AuthorizeDiscount(ctx context.Context, username, password string, pct decimal.Decimal) (string, *auth.DiscountGrant, error) {
	v := validation.Violations{}
	validation.Percent("discount_percent", pct, v)
	if !v.Empty() {
		return "", nil, violationsError(v)
	}
	u, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return "", nil, err
	}
	if !policy.CanAuthorizeDiscount(u.Role) {
		return "", nil, ErrForbidden
	}
	grant := auth.DiscountGrant{
		AuthorizerID:   u.ID,
		AuthorizerName: u.DisplayName(),
		MaxDiscount:    pct.Round(1),
		AuthorizedAt:   s.Now().Truncate(time.Second),
	}
	token, err := auth.IssueDiscountGrant(grant, s.GrantTTL)
	if err != nil {
		return "", nil, err
	}
	return token, &grant, nil
}

// UserExists reports whether uid is an active user.
func (s *StaffService) UserExists(ctx context.Context, uid uint) bool {
	var count int64
	s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ? AND is_active = ?", uid, true).Count(&count)
	return count > 0
}

func (s *StaffService) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translateDBError(err)
	}
	return &u, nil
}
