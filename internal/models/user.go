package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const PasswordResetTTL = 10 * time.Minute

type User struct {
	ID                   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name                 string             `json:"name" bson:"name"`
	Email                string             `json:"email" bson:"email"`
	Photo                string             `json:"photo,omitempty" bson:"photo,omitempty"`
	Role                 string             `json:"role" bson:"role"`
	Password             string             `json:"-" bson:"password"`
	PasswordChangedAt    time.Time          `json:"-" bson:"passwordChangedAt,omitempty"`
	PasswordResetToken   string             `json:"-" bson:"passwordResetToken,omitempty"`
	PasswordResetExpires time.Time          `json:"-" bson:"passwordResetExpires,omitempty"`
	CreatedAt            time.Time          `json:"createdAt" bson:"createdAt"`
}

// PublicUser is the reference shape embedded when another resource expands
// a user field.
type PublicUser struct {
	ID    primitive.ObjectID `json:"id" bson:"_id"`
	Name  string             `json:"name" bson:"name"`
	Photo string             `json:"photo,omitempty" bson:"photo,omitempty"`
	Role  string             `json:"role,omitempty" bson:"role,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Photo: u.Photo, Role: u.Role}
}

// CorrectPassword compares a candidate password against the stored hash.
func (u *User) CorrectPassword(candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate)) == nil
}

// ChangedPasswordAfter reports whether the password was changed after the
// given token issue time. Tokens minted before a password change must be
// rejected.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt.IsZero() {
		return false
	}
	return issuedAt.Unix() < u.PasswordChangedAt.Unix()
}

// NewPasswordResetToken generates a random reset token. The raw value goes
// to the user's email; only its sha256 digest and a 10-minute expiry are
// stored.
func NewPasswordResetToken() (raw, hashed string, expires time.Time, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", time.Time{}, err
	}
	raw = hex.EncodeToString(buf)
	return raw, HashToken(raw), time.Now().Add(PasswordResetTTL), nil
}

// HashToken returns the hex sha256 digest of a reset token, the form in
// which tokens are stored and looked up.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

type SignupRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

type CreateUserRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Photo           string `json:"photo"`
	Role            string `json:"role" validate:"omitempty,oneof=user guide lead-guide admin"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

type UpdateUserRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=2,max=100"`
	Email *string `json:"email" validate:"omitempty,email"`
	Photo *string `json:"photo"`
	Role  *string `json:"role" validate:"omitempty,oneof=user guide lead-guide admin"`
}

func (r *UpdateUserRequest) SetDoc() map[string]interface{} {
	set := map[string]interface{}{}
	if r.Name != nil {
		set["name"] = trim(*r.Name)
	}
	if r.Email != nil {
		set["email"] = NormalizeEmail(*r.Email)
	}
	if r.Photo != nil {
		set["photo"] = *r.Photo
	}
	if r.Role != nil {
		set["role"] = *r.Role
	}
	return set
}

// NormalizeEmail lowercases and trims an email before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
