package auth

import (
	"context"
	"errors"
	"strings"

	"erp-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrEmailTaken = errors.New("email already registered")

const minPasswordLen = 8

// UserStore is implemented by the database and memory stores.
// Finders return nil, nil when no user matches.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	CountUsersByRole(ctx context.Context, role models.UserRole) (int64, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
}

func ToUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// NewUser validates the request and hashes the password.
func NewUser(body RegisterRequest, role models.UserRole) (*models.User, error) {
	body.Name = strings.TrimSpace(body.Name)
	body.Email = strings.TrimSpace(strings.ToLower(body.Email))
	if body.Email == "" || body.Password == "" || body.Name == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "name, email and password are required")
	}
	if !strings.Contains(body.Email, "@") {
		return nil, fiber.NewError(fiber.StatusBadRequest, "email is not valid")
	}
	if len(body.Password) < minPasswordLen {
		return nil, fiber.NewError(fiber.StatusBadRequest, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "password could not be hashed")
	}
	return &models.User{
		ID:           uuid.NewString(),
		Name:         body.Name,
		Email:        body.Email,
		PasswordHash: string(hash),
		Role:         role,
	}, nil
}

// CreateUser stores u and maps a duplicate email to 409.
func CreateUser(ctx context.Context, users UserStore, u *models.User) error {
	if err := users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return fiber.NewError(fiber.StatusConflict, "email already registered")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "user could not be created")
	}
	return nil
}

// POST /api/auth/register-admin: only allowed while no admin exists.
func RegisterAdminHandler(users UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		count, err := users.CountUsersByRole(c.UserContext(), models.RoleAdmin)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "users could not be counted")
		}
		if count > 0 {
			return fiber.NewError(fiber.StatusForbidden, "an admin already exists")
		}

		user, err := NewUser(body, models.RoleAdmin)
		if err != nil {
			return err
		}
		if err := CreateUser(c.UserContext(), users, user); err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(ToUserResponse(user))
	}
}

func LoginHandler(secret string, users UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		user, err := users.FindUserByEmail(c.UserContext(), body.Email)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "user lookup failed")
		}
		if user == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "wrong email or password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "wrong email or password")
		}

		token, err := GenerateToken(secret, user)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "token could not be created")
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user":  ToUserResponse(user),
		})
	}
}

func MeHandler(users UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals(CtxUserIDKey).(string)

		user, err := users.FindUserByID(c.UserContext(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "user lookup failed")
		}
		if user == nil {
			return fiber.NewError(fiber.StatusNotFound, "user not found")
		}
		return c.JSON(ToUserResponse(user))
	}
}
