package admin

import (
	"fmt"

	"erp-backend/internal/audit"
	"erp-backend/internal/auth"
	"erp-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type CreateUserRequest struct {
	auth.RegisterRequest
	Role models.UserRole `json:"role"` // admin / staff, default staff
}

// POST /api/admin/users
func CreateUserHandler(users auth.UserStore, auditor *audit.Writer, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		switch body.Role {
		case "":
			body.Role = models.RoleStaff
		case models.RoleAdmin, models.RoleStaff:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "role must be admin or staff")
		}

		user, err := auth.NewUser(body.RegisterRequest, body.Role)
		if err != nil {
			return err
		}
		if err := auth.CreateUser(c.UserContext(), users, user); err != nil {
			return err
		}

		resp := auth.ToUserResponse(user)
		actorID, _ := c.Locals(auth.CtxUserIDKey).(string)
		actorName, _ := c.Locals(auth.CtxUserNameKey).(string)
		err = auditor.WriteLog(c.UserContext(), audit.LogOptions{
			UserID:      actorID,
			UserName:    actorName,
			EntityType:  "user",
			EntityID:    user.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("User created: %s (%s)", user.Email, user.Role),
			After:       resp,
		})
		if err != nil {
			log.Warn("audit log write failed", zap.String("entity_id", user.ID), zap.Error(err))
		}

		return c.Status(fiber.StatusCreated).JSON(resp)
	}
}

// GET /api/admin/users
func ListUsersHandler(users auth.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		list, err := users.ListUsers(c.UserContext())
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "users could not be listed")
		}
		resp := make([]auth.UserResponse, 0, len(list))
		for i := range list {
			resp = append(resp, auth.ToUserResponse(&list[i]))
		}
		return c.JSON(resp)
	}
}
