package access

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hirehub/core/internal/database/dbtest"
	"github.com/hirehub/core/internal/middleware"
	"github.com/hirehub/core/internal/models"
	"github.com/hirehub/core/internal/modules/common"
	jwtpkg "github.com/hirehub/core/internal/pkg/jwt"
	"github.com/hirehub/core/internal/serializer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type env struct {
	r     *gin.Engine
	db    *gorm.DB
	token string
}

func setup(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwtpkg.SetSecret("access-test")

	db := dbtest.Open(t, models.All()...)
	reg, err := models.NewRegistry()
	require.NoError(t, err)

	views := common.NewViews(&serializer.Engine{Registry: reg, DB: db}, nil)
	h := NewHandler(NewService(db), views, time.Hour)

	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"), common.Guards{
		Auth:     middleware.Auth(db),
		Optional: middleware.OptionalAuth(db),
	})
	return &env{r: r, db: db}
}

func (e *env) call(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func (e *env) login(t *testing.T, login, password string) {
	t.Helper()
	w := e.call(http.MethodPost, "/api/v1/auth/token/", `{"username": "`+login+`", "password": "`+password+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	e.token = out["token"].(string)
}

func body(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestUserCreate(t *testing.T) {
	e := setup(t)

	w := e.call(http.MethodPost, "/api/v1/user/create/", `{
		"email": "Ada@Example.COM",
		"first_name": "Ada",
		"last_name": "Lovelace",
		"phone_number": "+1 650-253-0000",
		"password": "s3cret-pass"
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	out := body(t, w)
	assert.Equal(t, "Ada@example.com", out["email"])
	assert.Equal(t, "+1 650-253-0000", out["phone_number"])
	assert.Contains(t, out, "password")
	assert.Nil(t, out["password"])

	var u models.UserModel
	require.NoError(t, e.db.First(&u).Error)
	assert.Equal(t, "ada", u.Username)
	require.NotNil(t, u.Type)
	assert.Equal(t, models.UserTypeJobSeeker, *u.Type)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("s3cret-pass")))
	require.NotNil(t, u.PhoneNumber)
	assert.Equal(t, "+16502530000", u.PhoneNumber.E164)

	w = e.call(http.MethodPost, "/api/v1/user/create/", `{"email": "ada@example.com", "first_name": "A", "last_name": "L"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]any{"email": []any{"user with this email address already exists."}}, body(t, w)["errors"])

	w = e.call(http.MethodPost, "/api/v1/user/create/", `{"email": "not-an-email", "first_name": ""}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	errs := body(t, w)["errors"].(map[string]any)
	assert.Contains(t, errs, "email")
	assert.Equal(t, []any{"Please enter your first name"}, errs["first_name"])
	assert.Equal(t, []any{"Please enter your last name"}, errs["last_name"])
	assert.NotContains(t, errs, "phone_number")
}

func TestRecruiterCreate(t *testing.T) {
	e := setup(t)

	w := e.call(http.MethodPost, "/api/v1/recruiter/create/", `{"email": "grace@example.com", "first_name": "Grace", "last_name": "Hopper", "type": "job_seeker"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var u models.UserModel
	require.NoError(t, e.db.First(&u).Error)
	require.NotNil(t, u.Type)
	assert.Equal(t, models.UserTypeRecruiter, *u.Type, "type is forced, never taken from input")
	assert.Equal(t, unusablePassword, u.Password)

	// recruiters without a password cannot log in
	w = e.call(http.MethodPost, "/api/v1/auth/token/", `{"email": "grace@example.com", "password": "!"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.call(http.MethodGet, "/api/v1/recruiter/create/meta/", "")
	require.Equal(t, http.StatusOK, w.Code)
	rc := body(t, w)["render_config"].([]any)
	require.Len(t, rc, 4)
	assert.Equal(t, "email", rc[0].(map[string]any)["key"])
	assert.Equal(t, "EmailField", rc[0].(map[string]any)["type"])
}

func TestToken(t *testing.T) {
	e := setup(t)
	require.Equal(t, http.StatusCreated, e.call(http.MethodPost, "/api/v1/user/create/",
		`{"email": "ada@example.com", "first_name": "Ada", "last_name": "L", "password": "pw-123456"}`).Code)

	w := e.call(http.MethodPost, "/api/v1/auth/token/", `{"email": "ADA@example.com", "password": "pw-123456"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	claims, err := jwtpkg.Parse(body(t, w)["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)

	var u models.UserModel
	require.NoError(t, e.db.First(&u).Error)
	assert.NotNil(t, u.LastLoginTime)

	w = e.call(http.MethodPost, "/api/v1/auth/token/", `{"username": "ada", "password": "wrong"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Unable to log in with provided credentials.", body(t, w)["message"])

	w = e.call(http.MethodPost, "/api/v1/auth/token/", `{"password": "pw-123456"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]any{"username": []any{"This field is required."}}, body(t, w)["errors"])
}

func TestUserList(t *testing.T) {
	e := setup(t)
	for _, email := range []string{"a@example.com", "b@example.com"} {
		require.Equal(t, http.StatusCreated, e.call(http.MethodPost, "/api/v1/user/create/",
			`{"email": "`+email+`", "first_name": "F", "last_name": "L", "password": "pw-123456"}`).Code)
	}

	assert.Equal(t, http.StatusUnauthorized, e.call(http.MethodGet, "/api/v1/user/list/", "").Code)

	e.login(t, "a", "pw-123456")
	w := e.call(http.MethodGet, "/api/v1/user/list/", "")
	require.Equal(t, http.StatusOK, w.Code)
	data := body(t, w)["data"].([]any)
	require.Len(t, data, 2)
	assert.Equal(t, map[string]any{
		"id":           float64(2),
		"email":        "b@example.com",
		"first_name":   "F",
		"last_name":    "L",
		"username":     "b",
		"phone_number": nil,
		"type":         models.UserTypeJobSeeker,
	}, data[0])

	w = e.call(http.MethodGet, "/api/v1/user/list/1/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a", body(t, w)["username"])

	var b models.UserModel
	require.NoError(t, e.db.Where("username = ?", "b").First(&b).Error)
	w = e.call(http.MethodGet, "/api/v1/user/list/by-uuid/"+b.UUID+"/", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "b@example.com", body(t, w)["email"])

	assert.Equal(t, http.StatusNotFound, e.call(http.MethodGet, "/api/v1/user/list/by-uuid/nope/", "").Code)
	assert.Equal(t, http.StatusNotFound, e.call(http.MethodGet, "/api/v1/user/list/by-uuid/"+uuid.NewString()+"/", "").Code)
}

func TestUserDetail(t *testing.T) {
	e := setup(t)
	require.Equal(t, http.StatusCreated, e.call(http.MethodPost, "/api/v1/user/create/",
		`{"email": "ada@example.com", "first_name": "Ada", "last_name": "L", "password": "pw-123456"}`).Code)
	e.login(t, "ada", "pw-123456")

	img := models.ImageUploadModel{Image: "images/ada.png"}
	require.NoError(t, e.db.Create(&img).Error)
	skills := []models.SkillModel{{Name: "Go"}, {Name: "Rust"}}
	require.NoError(t, e.db.Create(&skills).Error)

	w := e.call(http.MethodGet, "/api/v1/user-detail/create/meta/", "")
	require.Equal(t, http.StatusOK, w.Code)
	meta := body(t, w)
	assert.Equal(t, map[string]any{
		"gender": []any{
			map[string]any{"id": "male", "identity": "Male"},
			map[string]any{"id": "female", "identity": "Female"},
			map[string]any{"id": "transgender", "identity": "Transgender"},
		},
		"skills": []any{
			map[string]any{"id": float64(1), "identity": "Go"},
			map[string]any{"id": float64(2), "identity": "Rust"},
		},
	}, meta["meta"])
	types := map[string]any{}
	for _, rf := range meta["render_config"].([]any) {
		types[rf.(map[string]any)["key"].(string)] = rf.(map[string]any)["type"]
	}
	assert.Equal(t, map[string]any{
		"user":          "ForeignKey",
		"address":       "JSONField",
		"date_of_birth": "DateField",
		"gender":        "ChoiceField",
		"profile_image": "ImageUpload",
		"resume":        "FileUpload",
		"skills":        "ManyToManyField",
	}, types)

	w = e.call(http.MethodPost, "/api/v1/user-detail/", `{
		"user": 1,
		"address": {"city": "London"},
		"date_of_birth": "1815-12-10",
		"gender": "female",
		"profile_image": 1,
		"resume": "",
		"skills": [2, 1]
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := body(t, w)
	assert.Equal(t, "1815-12-10", created["date_of_birth"])
	assert.Equal(t, []any{float64(1), float64(2)}, created["skills"])
	assert.Equal(t, map[string]any{"id": float64(1), "image": "images/ada.png", "url": "images/ada.png"}, created["profile_image"])
	assert.Nil(t, created["resume"])

	var detail models.UserDetailModel
	require.NoError(t, e.db.First(&detail).Error)
	require.NotNil(t, detail.CreatedByID)
	assert.Equal(t, uint(1), *detail.CreatedByID)

	w = e.call(http.MethodGet, "/api/v1/user-detail/1/update/meta/", "")
	require.Equal(t, http.StatusOK, w.Code)
	initial := body(t, w)["initial"].(map[string]any)
	assert.Equal(t, "female", initial["gender"])
	assert.Equal(t, map[string]any{"city": "London"}, initial["address"])

	w = e.call(http.MethodPatch, "/api/v1/user-detail/1/", `{"gender": "other"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]any{"gender": []any{`"other" is not a valid choice.`}}, body(t, w)["errors"])

	w = e.call(http.MethodPatch, "/api/v1/user-detail/1/", `{"skills": [99]}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = e.call(http.MethodGet, "/api/v1/user-detail/1/", "")
	require.Equal(t, http.StatusOK, w.Code)
	read := body(t, w)
	assert.Equal(t, float64(1), read["created_by"])
	assert.Equal(t, float64(1), read["user"])
	assert.NotEmpty(t, read["uuid"])

	require.Equal(t, http.StatusNoContent, e.call(http.MethodDelete, "/api/v1/user-detail/1/", "").Code)
	assert.Equal(t, http.StatusNotFound, e.call(http.MethodGet, "/api/v1/user-detail/1/", "").Code)
}
