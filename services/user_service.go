package services

import (
	"errors"
	"strings"

	"github.com/ichchha07-wish/meal-system/models"
	"github.com/ichchha07-wish/meal-system/utils"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

type RegisterInput struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	FullName    string `json:"full_name" binding:"required"`
	Role        string `json:"role" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Address     string `json:"address"`
}

func (s *UserService) Register(in RegisterInput) (*models.User, error) {
	if in.Role != models.RoleBeneficiary && in.Role != models.RoleProvider {
		return nil, &ValidationError{Field: "role", Message: "must be beneficiary or provider"}
	}
	phone := strings.TrimSpace(in.PhoneNumber)
	if len(phone) != 10 || strings.Trim(phone, "0123456789") != "" {
		return nil, &ValidationError{Field: "phone_number", Message: "phone number must be exactly 10 digits"}
	}

	hashed, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:       strings.ToLower(strings.TrimSpace(in.Email)),
		Password:    hashed,
		FullName:    in.FullName,
		Role:        in.Role,
		PhoneNumber: phone,
		Address:     in.Address,
	}
	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ConflictError{Message: "an account with this email or phone already exists"}
		}
		return nil, err
	}
	return user, nil
}

// Authenticate checks credentials and issues a JWT.
func (s *UserService) Authenticate(email, password string) (string, *models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return "", nil, &PermissionError{Message: "invalid email or password"}
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return "", nil, &PermissionError{Message: "invalid email or password"}
	}
	token, err := utils.GenerateJWT(user.ID, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

func (s *UserService) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, err
	}
	return &user, nil
}
