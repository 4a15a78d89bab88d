package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/campus-engage/engage-api/internal/config"
	"github.com/campus-engage/engage-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrBadCredentials covers unknown email and wrong password alike.
	ErrBadCredentials = errors.New("incorrect email or password")
	// ErrInvalidToken is returned for any structural or signature failure.
	ErrInvalidToken = errors.New("could not validate access token")
)

// Identity is the caller's identity as carried by a bearer token.
type Identity struct {
	UserID   string
	Email    string
	FullName string
	Role     string
}

type AuthHandler struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB) *AuthHandler {
	return &AuthHandler{cfg: cfg, db: db}
}

func (h *AuthHandler) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *AuthHandler) CheckPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// Authenticate looks up a user by email and verifies the password.
func (h *AuthHandler) Authenticate(email, password string) (models.User, error) {
	var user models.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrBadCredentials
		}
		return models.User{}, err
	}
	if !h.CheckPassword(user.HashedPassword, password) {
		return models.User{}, ErrBadCredentials
	}
	return user, nil
}

// GenerateToken issues a signed bearer token for the user. The token carries
// no expiry claim; once issued it stays valid until the signing secret rotates.
func (h *AuthHandler) GenerateToken(user models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":   user.ID,
		"email":     user.Email,
		"full_name": user.FullName,
		"role":      user.Role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// ParseToken verifies the signature and extracts the caller identity.
func (h *AuthHandler) ParseToken(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, ErrInvalidToken
	}

	identity := Identity{}
	for claim, target := range map[string]*string{
		"user_id":   &identity.UserID,
		"email":     &identity.Email,
		"full_name": &identity.FullName,
		"role":      &identity.Role,
	} {
		value, ok := claims[claim].(string)
		if !ok {
			return Identity{}, ErrInvalidToken
		}
		*target = value
	}

	return identity, nil
}

// AuthInput is embedded by handler inputs that require a bearer token.
type AuthInput struct {
	Authorization string `header:"Authorization" doc:"Bearer access token"`
}

// Authorize resolves the Authorization header into a caller identity.
func (h *AuthHandler) Authorize(authorization string) (Identity, error) {
	tokenString := strings.TrimSpace(strings.TrimPrefix(authorization, "Bearer "))
	if tokenString == "" {
		return Identity{}, huma.Error401Unauthorized("Missing access token")
	}

	identity, err := h.ParseToken(tokenString)
	if err != nil {
		return Identity{}, huma.Error401Unauthorized(ErrInvalidToken.Error())
	}
	return identity, nil
}

// AuthorizeAdmin is Authorize plus the admin role gate.
func (h *AuthHandler) AuthorizeAdmin(authorization string) (Identity, error) {
	identity, err := h.Authorize(authorization)
	if err != nil {
		return Identity{}, err
	}
	if identity.Role != models.RoleAdmin {
		return Identity{}, huma.Error403Forbidden("This operation is forbidden for this resource")
	}
	return identity, nil
}
