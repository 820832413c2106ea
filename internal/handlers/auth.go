package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rlaxodnjs199/natours-api/internal/apperror"
	"github.com/rlaxodnjs199/natours-api/internal/database"
	"github.com/rlaxodnjs199/natours-api/internal/models"
	"github.com/rlaxodnjs199/natours-api/internal/token"
	"github.com/rlaxodnjs199/natours-api/utils"
)

// Identical message for unknown email and wrong password, so responses
// cannot be used to enumerate accounts.
const incorrectCredentials = "Incorrect email or password"

func createSendToken(c *fiber.Ctx, user *models.User, statusCode int) error {
	tok, err := token.Sign(user.ID.Hex(), cfg.JWTSecret, cfg.JWTExpiresIn)
	if err != nil {
		return err
	}

	return c.Status(statusCode).JSON(fiber.Map{
		"status": "success",
		"token":  tok,
		"data": fiber.Map{
			"user": user,
		},
	})
}

func Signup(c *fiber.Ctx) error {
	var req models.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := utils.Validate.Struct(req); err != nil {
		return err
	}

	hashed, err := models.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		Name:      strings.TrimSpace(req.Name),
		Email:     models.NormalizeEmail(req.Email),
		Role:      "user",
		Password:  hashed,
		CreatedAt: time.Now(),
	}

	collection := database.GetCollection(database.ColUsers)
	if _, err := collection.InsertOne(context.Background(), user); err != nil {
		return err
	}

	return createSendToken(c, &user, fiber.StatusCreated)
}

func Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return apperror.BadRequest("Please provide email and password!")
	}

	collection := database.GetCollection(database.ColUsers)
	var user models.User
	err := collection.FindOne(context.Background(), bson.M{"email": models.NormalizeEmail(req.Email)}).Decode(&user)
	if err != nil || !user.CorrectPassword(req.Password) {
		return apperror.Unauthorized(incorrectCredentials)
	}

	return createSendToken(c, &user, fiber.StatusOK)
}

// Protect walks a request from TokenPresent to Authorized: extract the
// bearer token, verify it, resolve the user it references, and reject
// tokens issued before the user's last password change. The resolved user
// is attached for downstream handlers.
func Protect(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return apperror.Unauthorized("You are not logged in! Please log in to get access.")
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	userID, issuedAt, err := token.Verify(tokenString, cfg.JWTSecret)
	if err != nil {
		return err
	}

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return apperror.Unauthorized("Invalid token. Please log in again.")
	}

	var user models.User
	err = database.GetCollection(database.ColUsers).
		FindOne(context.Background(), bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperror.Unauthorized("The user belonging to this token does no longer exist.")
		}
		return err
	}

	if user.ChangedPasswordAfter(issuedAt) {
		return apperror.Unauthorized("User recently changed password! Please log in again.")
	}

	c.Locals(localUserKey, &user)
	return c.Next()
}

// RestrictTo gates a route to the given roles. Must run after Protect.
func RestrictTo(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return apperror.Unauthorized("You are not logged in! Please log in to get access.")
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return apperror.Forbidden("You do not have permission to perform this action")
	}
}

func ForgotPassword(c *fiber.Ctx) error {
	var req models.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := utils.Validate.Struct(req); err != nil {
		return err
	}

	ctx := context.Background()
	collection := database.GetCollection(database.ColUsers)

	var user models.User
	err := collection.FindOne(ctx, bson.M{"email": models.NormalizeEmail(req.Email)}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperror.NotFound("There is no user with that email address.")
		}
		return err
	}

	raw, hashed, expires, err := models.NewPasswordResetToken()
	if err != nil {
		return err
	}
	_, err = collection.UpdateByID(ctx, user.ID, bson.M{"$set": bson.M{
		"passwordResetToken":   hashed,
		"passwordResetExpires": expires,
	}})
	if err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s://%s/api/v1/users/resetPassword/%s", c.Protocol(), c.Hostname(), raw)
	message := fmt.Sprintf("Forgot your password? Submit a PATCH request with your new password to: %s\nIf you didn't forget your password, please ignore this email.", resetURL)

	if err := mail.Send(user.Email, "Your password reset token (valid for 10 min)", message); err != nil {
		// Sending failed: the stored token is useless, clear it before
		// surfacing a generic failure.
		_, _ = collection.UpdateByID(ctx, user.ID, bson.M{"$unset": bson.M{
			"passwordResetToken":   "",
			"passwordResetExpires": "",
		}})
		return apperror.New(fiber.StatusInternalServerError, "There was an error sending the email. Try again later!")
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Token sent to email!",
	})
}

func ResetPassword(c *fiber.Ctx) error {
	var req models.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := utils.Validate.Struct(req); err != nil {
		return err
	}

	ctx := context.Background()
	collection := database.GetCollection(database.ColUsers)

	// Look up by the digest of the supplied token, accepting it only
	// before its expiry.
	hashed := models.HashToken(c.Params("token"))
	var user models.User
	err := collection.FindOne(ctx, bson.M{
		"passwordResetToken":   hashed,
		"passwordResetExpires": bson.M{"$gt": time.Now()},
	}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return apperror.BadRequest("Token is invalid or has expired")
		}
		return err
	}

	if err := setPassword(ctx, &user, req.Password); err != nil {
		return err
	}

	return createSendToken(c, &user, fiber.StatusOK)
}

func UpdatePassword(c *fiber.Ctx) error {
	var req models.UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := utils.Validate.Struct(req); err != nil {
		return err
	}

	user := CurrentUser(c)
	if !user.CorrectPassword(req.PasswordCurrent) {
		return apperror.Unauthorized("Your current password is wrong.")
	}

	if err := setPassword(context.Background(), user, req.Password); err != nil {
		return err
	}

	return createSendToken(c, user, fiber.StatusOK)
}

// setPassword hashes and persists a new password, clearing any pending
// reset token. passwordChangedAt is backdated two seconds so a token
// issued in the same instant still passes the freshness check.
func setPassword(ctx context.Context, user *models.User, password string) error {
	hashed, err := models.HashPassword(password)
	if err != nil {
		return err
	}
	changedAt := time.Now().Add(-2 * time.Second)

	collection := database.GetCollection(database.ColUsers)
	_, err = collection.UpdateByID(ctx, user.ID, passwordUpdate(hashed, changedAt))
	if err != nil {
		return err
	}

	user.Password = hashed
	user.PasswordChangedAt = changedAt
	user.PasswordResetToken = ""
	user.PasswordResetExpires = time.Time{}
	return nil
}

// passwordUpdate builds the update that installs a new password hash and
// unsets any pending reset token, so a consumed token cannot be replayed.
func passwordUpdate(hashed string, changedAt time.Time) bson.M {
	return bson.M{
		"$set": bson.M{
			"password":          hashed,
			"passwordChangedAt": changedAt,
		},
		"$unset": bson.M{
			"passwordResetToken":   "",
			"passwordResetExpires": "",
		},
	}
}
