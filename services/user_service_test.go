package services

import (
	"errors"
	"testing"

	"github.com/ichchha07-wish/meal-system/models"
	"github.com/ichchha07-wish/meal-system/utils"
)

func registerInput(email, phone, role string) RegisterInput {
	return RegisterInput{
		Email:       email,
		Password:    "sup3rsecret",
		FullName:    "Asha Kamat",
		Role:        role,
		PhoneNumber: phone,
		Address:     "42 Hill Road",
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := newTestDB(t)
	svc := NewUserService(db)

	user, err := svc.Register(registerInput("Asha@Example.COM", "9812345670", models.RoleProvider))
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "asha@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if user.Password == "sup3rsecret" {
		t.Fatal("password stored in plaintext")
	}

	token, authed, err := svc.Authenticate("asha@example.com", "sup3rsecret")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != user.ID {
		t.Fatalf("authenticated wrong user: %d", authed.ID)
	}
	uid, role, err := utils.ParseJWT(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if uid != user.ID || role != models.RoleProvider {
		t.Fatalf("token claims wrong: uid=%d role=%q", uid, role)
	}

	_, _, err = svc.Authenticate("asha@example.com", "wrongpass")
	var perr *PermissionError
	if !errors.As(err, &perr) {
		t.Fatalf("want PermissionError for bad password, got %v", err)
	}
	_, _, err = svc.Authenticate("nobody@example.com", "sup3rsecret")
	if !errors.As(err, &perr) {
		t.Fatalf("want PermissionError for unknown email, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	_, err := svc.Register(registerInput("a@b.com", "9812345671", "admin"))
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "role" {
		t.Fatalf("want role ValidationError, got %v", err)
	}

	_, err = svc.Register(registerInput("a@b.com", "12345", models.RoleBeneficiary))
	if !errors.As(err, &verr) || verr.Field != "phone_number" {
		t.Fatalf("want phone ValidationError, got %v", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	if _, err := svc.Register(registerInput("dup@example.com", "9812345672", models.RoleBeneficiary)); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(registerInput("dup@example.com", "9812345673", models.RoleBeneficiary))
	var cerr *ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("want ConflictError for duplicate email, got %v", err)
	}
}
