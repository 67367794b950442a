package access

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hirehub/core/internal/database"
	"github.com/hirehub/core/internal/models"
	"github.com/hirehub/core/internal/serializer"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// unusablePassword never matches a bcrypt hash, so the account cannot log
// in until a password is set.
const unusablePassword = "!"

var (
	errBadCredentials = errors.New("unable to log in with provided credentials")
	usernameStrip     = regexp.MustCompile(`[^\w.@+-]`)
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

func (s *Service) checkEmailFree(ser *serializer.Serializer, attrs serializer.Payload) error {
	email, _ := attrs["email"].(string)
	if email == "" {
		return nil
	}
	var n int64
	err := ser.DB().Model(&models.UserModel{}).Where("LOWER(email) = ?", strings.ToLower(email)).Count(&n).Error
	if err != nil {
		return err
	}
	if n > 0 {
		return serializer.NewValidationError("email", "user with this email address already exists.")
	}
	return nil
}

// createUser is the create hook of the user serializers: it derives a
// unique username and stores a hash instead of the raw password.
func (s *Service) createUser(ser *serializer.Serializer, data serializer.Payload) (any, error) {
	email, _ := data["email"].(string)
	data["email"] = normalizeEmail(email)

	username, err := s.uniqueUsername(ser.Context(), email)
	if err != nil {
		return nil, err
	}
	data["username"] = username

	raw, _ := data["password"].(string)
	hash, err := HashPassword(raw)
	if err != nil {
		return nil, err
	}
	data["password"] = hash

	return ser.CreateModel(data)
}

// HashPassword returns a bcrypt hash, or the unusable marker for "".
func HashPassword(raw string) (string, error) {
	if raw == "" {
		return unusablePassword, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// normalizeEmail lowercases the domain part.
func normalizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + strings.ToLower(email[at:])
}

func (s *Service) uniqueUsername(ctx context.Context, email string) (string, error) {
	base := email
	if at := strings.Index(base, "@"); at > 0 {
		base = base[:at]
	}
	base = usernameStrip.ReplaceAllString(strings.ToLower(base), "")
	if base == "" {
		base = "user"
	}
	if len(base) > 140 {
		base = base[:140]
	}

	candidate := base
	for i := 0; i < 5; i++ {
		var n int64
		err := s.db.WithContext(ctx).Unscoped().Model(&models.UserModel{}).Where("username = ?", candidate).Count(&n).Error
		if err != nil {
			return "", err
		}
		if n == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%s", base, uuid.NewString()[:8])
	}
	return "", fmt.Errorf("no free username for %q", base)
}

// Login checks credentials given as email or username and stamps the
// login time.
func (s *Service) Login(ctx context.Context, login, password string) (*models.UserModel, error) {
	login = strings.TrimSpace(login)
	// an email that is also another account's username matches two rows
	u, err := database.GetOrNone[models.UserModel](s.db.WithContext(ctx),
		"is_active = ? AND (LOWER(email) = ? OR username = ?)", true, strings.ToLower(login), login)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, errBadCredentials
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(u).UpdateColumn("last_login_time", now).Error; err != nil {
		return nil, err
	}
	u.LastLoginTime = &now
	return u, nil
}
