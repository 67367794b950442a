package access

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/hirehub/core/internal/database"
	"github.com/hirehub/core/internal/models"
	"github.com/hirehub/core/internal/modules/common"
	jwtpkg "github.com/hirehub/core/internal/pkg/jwt"
	"github.com/hirehub/core/internal/pkg/response"
	"github.com/hirehub/core/internal/serializer"
)

type TokenDTO struct {
	Username string `json:"username" binding:"required_without=Email"`
	Email    string `json:"email"    binding:"omitempty,email"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    uint      `json:"user_id"`
	Type      *string   `json:"type"`
}

type Handler struct {
	svc      *Service
	views    *common.Views
	ser      *Serializers
	tokenTTL time.Duration
}

func NewHandler(svc *Service, views *common.Views, tokenTTL time.Duration) *Handler {
	return &Handler{svc: svc, views: views, ser: NewSerializers(svc), tokenTTL: tokenTTL}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, g common.Guards) {
	public := g.Pick(true)
	private := g.Pick(false)

	rg.POST("/auth/token/", h.token)

	rg.POST("/user/create/", public, h.views.Create(h.ser.UserCreate))
	rg.GET("/user/create/meta/", public, h.views.CreateMeta(h.ser.UserCreate))
	rg.POST("/recruiter/create/", public, h.views.Create(h.ser.RecruiterCreate))
	rg.GET("/recruiter/create/meta/", public, h.views.CreateMeta(h.ser.RecruiterCreate))
	rg.GET("/user/list/", private, h.views.List(h.ser.UserList))
	rg.GET("/user/list/:id/", private, h.views.Retrieve(h.ser.UserList))
	rg.GET("/user/list/by-uuid/:uuid/", private, h.userByUUID)

	h.views.Register(rg, g, common.ViewSet{
		Prefix:    "/user-detail",
		Entity:    models.EntityUserDetail,
		List:      h.ser.UserDetailRead,
		Retrieve:  h.ser.UserDetailRead,
		Create:    h.ser.UserDetailCreate,
		Update:    h.ser.UserDetailUpdate,
		Deletable: true,
	})
}

func (h *Handler) token(c *gin.Context) {
	var dto TokenDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		fields := bindingErrors(err)
		if len(fields) == 0 {
			response.BadRequest(c, err.Error())
			return
		}
		ve := &serializer.ValidationError{Fields: fields}
		response.ValidationFailed(c, ve.First(), ve.Fields)
		return
	}

	login := dto.Username
	if login == "" {
		login = dto.Email
	}
	u, err := h.svc.Login(c.Request.Context(), login, dto.Password)
	if errors.Is(err, errBadCredentials) {
		msg := "Unable to log in with provided credentials."
		response.ValidationFailed(c, msg, map[string][]string{serializer.NonFieldErrors: {msg}})
		return
	}
	if err != nil {
		response.InternalError(c, err)
		return
	}

	token, err := jwtpkg.Sign(u.ID, h.tokenTTL)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, tokenResponse{Token: token, ExpiresAt: time.Now().Add(h.tokenTTL), UserID: u.ID, Type: u.Type})
}

// userByUUID answers a user addressed by the public uuid.
func (h *Handler) userByUUID(c *gin.Context) {
	u, err := database.GetByUUID[models.UserModel](h.svc.db.WithContext(c.Request.Context()), c.Param("uuid"))
	if err != nil {
		h.views.Fail(c, err)
		return
	}
	if u == nil {
		response.NotFound(c)
		return
	}
	h.views.Represent(c, h.ser.UserList, u)
}

// bindingErrors turns validator failures into per-field messages.
func bindingErrors(err error) map[string][]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		var msg string
		switch fe.Tag() {
		case "required", "required_without":
			msg = "This field is required."
		case "email":
			msg = "Enter a valid email address."
		default:
			msg = "Invalid value."
		}
		out[name] = append(out[name], msg)
	}
	return out
}
