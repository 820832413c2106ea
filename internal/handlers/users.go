package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rlaxodnjs199/natours-api/internal/apperror"
	"github.com/rlaxodnjs199/natours-api/internal/database"
	"github.com/rlaxodnjs199/natours-api/internal/models"
	"github.com/rlaxodnjs199/natours-api/utils"
)

var userResource = ResourceConfig[models.User]{
	Collection:  database.ColUsers,
	Singular:    "user",
	Plural:      "users",
	ParseCreate: parseCreateUser,
	ParseUpdate: parseUpdateUser,
}

var (
	GetAllUsers = GetAll(userResource)
	GetUser     = GetOne(userResource)
	CreateUser  = CreateOne(userResource)
	UpdateUser  = UpdateOne(userResource)
	DeleteUser  = DeleteOne(userResource)
)

// parseCreateUser backs the admin POST /users route; self-service account
// creation goes through /signup.
func parseCreateUser(c *fiber.Ctx) (*models.User, error) {
	var req models.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperror.BadRequest("Invalid request body")
	}
	if err := utils.Validate.Struct(req); err != nil {
		return nil, err
	}

	hashed, err := models.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = "user"
	}

	return &models.User{
		ID:        primitive.NewObjectID(),
		Name:      strings.TrimSpace(req.Name),
		Email:     models.NormalizeEmail(req.Email),
		Photo:     req.Photo,
		Role:      role,
		Password:  hashed,
		CreatedAt: time.Now(),
	}, nil
}

// Password changes never go through this route: they need re-hashing and
// a passwordChangedAt bump, which updateMyPassword handles.
func parseUpdateUser(c *fiber.Ctx, _ primitive.ObjectID) (bson.M, error) {
	var req models.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperror.BadRequest("Invalid request body")
	}
	if err := utils.Validate.Struct(req); err != nil {
		return nil, err
	}
	return bson.M(req.SetDoc()), nil
}
