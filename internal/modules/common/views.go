// Package common turns serializer definitions into gin handlers: list,
// retrieve, create, update, delete and the form meta endpoints.
package common

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/hirehub/core/internal/middleware"
	"github.com/hirehub/core/internal/pkg/pagination"
	"github.com/hirehub/core/internal/pkg/response"
	"github.com/hirehub/core/internal/serializer"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Views builds handlers around an engine.
type Views struct {
	engine *serializer.Engine
	log    *zap.Logger
}

func NewViews(engine *serializer.Engine, log *zap.Logger) *Views {
	if log == nil {
		log = zap.NewNop()
	}
	return &Views{engine: engine, log: log}
}

func (v *Views) Engine() *serializer.Engine { return v.engine }

func request(c *gin.Context, partial bool) serializer.Request {
	return serializer.Request{Ctx: c.Request.Context(), Actor: middleware.Actor(c), Partial: partial}
}

// Create validates the body with def and answers 201 with the saved state.
func (v *Views) Create(def *serializer.Definition) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, ok := readPayload(c)
		if !ok {
			return
		}
		s, ok := v.CreateWith(c, def, data)
		if !ok {
			return
		}
		response.Created(c, s.Representation())
	}
}

// CreateWith validates and saves data through def for handlers that build
// the payload themselves. On failure the response is already written.
func (v *Views) CreateWith(c *gin.Context, def *serializer.Definition, data map[string]any) (*serializer.Serializer, bool) {
	s, ok := v.bind(c, def, request(c, false), nil)
	if !ok {
		return nil, false
	}
	if !v.save(c, s, data) {
		return nil, false
	}
	return s, true
}

// CreateMeta answers the empty form description of def.
func (v *Views) CreateMeta(def *serializer.Definition) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := v.bind(c, def, request(c, false), nil)
		if !ok {
			return
		}
		meta, err := s.MetaForCreate()
		if err != nil {
			v.Fail(c, err)
			return
		}
		response.OK(c, meta)
	}
}

// Update writes the body onto the row named by :id. PATCH validates only
// the fields present.
func (v *Views) Update(def *serializer.Definition) gin.HandlerFunc {
	return func(c *gin.Context) {
		instance, ok := v.lookup(c, def)
		if !ok {
			return
		}
		data, ok := readPayload(c)
		if !ok {
			return
		}
		s, ok := v.bind(c, def, request(c, c.Request.Method == http.MethodPatch), instance)
		if !ok {
			return
		}
		if !v.save(c, s, data) {
			return
		}
		response.OK(c, s.Representation())
	}
}

// UpdateMeta answers the form description of def pre-filled from :id.
func (v *Views) UpdateMeta(def *serializer.Definition) gin.HandlerFunc {
	return func(c *gin.Context) {
		instance, ok := v.lookup(c, def)
		if !ok {
			return
		}
		s, ok := v.bind(c, def, request(c, false), instance)
		if !ok {
			return
		}
		meta, err := s.MetaForUpdate()
		if err != nil {
			v.Fail(c, err)
			return
		}
		response.OK(c, meta)
	}
}

// Retrieve answers one row through a read-only definition.
func (v *Views) Retrieve(def *serializer.Definition) gin.HandlerFunc {
	return func(c *gin.Context) {
		instance, ok := v.lookup(c, def)
		if !ok {
			return
		}
		v.Represent(c, def, instance)
	}
}

// Represent answers instance through def.
func (v *Views) Represent(c *gin.Context, def *serializer.Definition, instance any) {
	s, ok := v.bind(c, def, request(c, false), instance)
	if !ok {
		return
	}
	response.OK(c, s.Representation())
}

// List answers a page of rows, newest first, through a read-only definition.
func (v *Views) List(def *serializer.Definition) gin.HandlerFunc {
	return func(c *gin.Context) {
		entity, err := v.engine.Registry.Entity(def.Entity)
		if err != nil {
			v.Fail(c, err)
			return
		}
		q := pagination.FromContext(c)
		pk := entity.Schema.PrioritizedPrimaryField.DBName

		ctx := c.Request.Context()
		rows := reflect.New(reflect.SliceOf(entity.New().Type()))
		count := v.engine.DB.WithContext(ctx).Model(entity.New().Interface())
		query := v.engine.Query(ctx, entity).Order(pk + " DESC")
		pag, err := pagination.PaginateInto(count, query, q, rows.Interface())
		if err != nil {
			v.Fail(c, err)
			return
		}

		items := make([]map[string]any, 0, rows.Elem().Len())
		req := request(c, false)
		for i := 0; i < rows.Elem().Len(); i++ {
			s, ok := v.bind(c, def, req, rows.Elem().Index(i).Interface())
			if !ok {
				return
			}
			items = append(items, s.Representation())
		}
		response.Paged(c, items, pag)
	}
}

// Delete soft deletes the row named by :id.
func (v *Views) Delete(entityName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		instance, ok := v.lookup(c, &serializer.Definition{Entity: entityName})
		if !ok {
			return
		}
		if err := v.engine.DB.WithContext(c.Request.Context()).Delete(instance).Error; err != nil {
			v.Fail(c, err)
			return
		}
		response.NoContent(c)
	}
}

func (v *Views) save(c *gin.Context, s *serializer.Serializer, data map[string]any) bool {
	if _, err := s.Validate(data); err != nil {
		v.Fail(c, err)
		return false
	}
	if _, err := s.Save(); err != nil {
		v.Fail(c, err)
		return false
	}
	return true
}

func (v *Views) bind(c *gin.Context, def *serializer.Definition, req serializer.Request, instance any) (*serializer.Serializer, bool) {
	s, err := v.engine.Bind(def, req, instance)
	if err != nil {
		v.Fail(c, err)
		return nil, false
	}
	return s, true
}

// lookup loads the row named by :id. Malformed and unknown ids are a 404.
func (v *Views) lookup(c *gin.Context, def *serializer.Definition) (any, bool) {
	entity, err := v.engine.Registry.Entity(def.Entity)
	if err != nil {
		v.Fail(c, err)
		return nil, false
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.NotFound(c)
		return nil, false
	}
	instance, err := v.engine.Fetch(c.Request.Context(), entity, uint(id))
	if err != nil {
		v.Fail(c, err)
		return nil, false
	}
	if instance == nil {
		response.NotFound(c)
		return nil, false
	}
	return instance, true
}

// Fail maps err to a response: validation errors are a 400 with per-field
// messages, everything else a logged 500.
func (v *Views) Fail(c *gin.Context, err error) {
	var ve *serializer.ValidationError
	switch {
	case errors.As(err, &ve):
		response.ValidationFailed(c, ve.First(), ve.Fields)
	case errors.Is(err, gorm.ErrRecordNotFound):
		response.NotFound(c)
	default:
		if errors.Is(err, serializer.ErrUnsupportedOperation) {
			v.log.Error("serializer misuse", zap.String("path", c.FullPath()), zap.Error(err))
		} else {
			v.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		}
		_ = c.Error(err)
		response.InternalError(c, err)
	}
}

// readPayload decodes a JSON object body. An empty body is an empty object.
func readPayload(c *gin.Context) (map[string]any, bool) {
	data := map[string]any{}
	if err := c.ShouldBindJSON(&data); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, "JSON parse error: "+err.Error())
		return nil, false
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, true
}
