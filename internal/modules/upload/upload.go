// Package upload stores files and images and records them as upload
// entities other rows can point at.
package upload

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hirehub/core/internal/config"
	"github.com/hirehub/core/internal/models"
	"github.com/hirehub/core/internal/modules/common"
	"github.com/hirehub/core/internal/pkg/response"
	"github.com/hirehub/core/internal/pkg/storage"
	"github.com/hirehub/core/internal/serializer"
	"go.uber.org/zap"
)

// Kind describes one upload endpoint.
type Kind struct {
	Path   string
	Folder string
	Image  bool
	Def    *serializer.Definition
}

var (
	File = Kind{
		Path:   "file",
		Folder: "files",
		Def:    uploadDefinition("FileUploadCreate", models.EntityFileUpload, "file"),
	}
	Image = Kind{
		Path:   "image",
		Folder: "images",
		Image:  true,
		Def:    uploadDefinition("ImageUploadCreate", models.EntityImageUpload, "image"),
	}
)

// uploadDefinition declares only the file field so the answer is
// {id, <file field>: url}. The remaining columns come from the request.
func uploadDefinition(name, entity, fileField string) *serializer.Definition {
	return &serializer.Definition{
		Name:    name,
		Entity:  entity,
		Variant: serializer.VariantCreate,
		Fields:  []string{fileField},
		Create: func(s *serializer.Serializer, data serializer.Payload) (any, error) {
			if v, ok := serializer.InitialValue[string](s, "original_name"); ok {
				data["original_name"] = v
			}
			if v, ok := serializer.InitialValue[int64](s, "size"); ok {
				data["size"] = v
			}
			if v, ok := serializer.InitialValue[string](s, "content_type"); ok {
				data["content_type"] = v
			}
			return s.CreateModel(data)
		},
	}
}

type Handler struct {
	views  *common.Views
	store  storage.Backend
	limits config.UploadConfig
	log    *zap.Logger
}

func NewHandler(views *common.Views, store storage.Backend, limits config.UploadConfig, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{views: views, store: store, limits: limits, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, g common.Guards) {
	u := rg.Group("/uploads", g.Pick(false))
	for _, k := range []Kind{File, Image} {
		u.POST("/"+k.Path+"/", h.upload(k))
	}
}

func (h *Handler) upload(k Kind) gin.HandlerFunc {
	maxBytes := int64(h.limits.MaxSizeMB) << 20
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+1<<20)

		header, err := formFile(c, k.Def.Fields[0])
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				h.reject(c, k, fmt.Sprintf("File size must not exceed %d MB.", h.limits.MaxSizeMB))
				return
			}
			h.reject(c, k, "No file was submitted.")
			return
		}
		if header.Size > maxBytes {
			h.reject(c, k, fmt.Sprintf("File size must not exceed %d MB.", h.limits.MaxSizeMB))
			return
		}

		contentType, err := sniff(header)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		if k.Image && !h.imageAllowed(header.Filename, contentType) {
			h.reject(c, k, "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
			return
		}

		key := storage.ObjectKey(k.Folder, header.Filename)
		f, err := header.Open()
		if err != nil {
			response.InternalError(c, err)
			return
		}
		defer f.Close()

		ctx := c.Request.Context()
		if err := h.store.Put(ctx, key, f, header.Size, contentType); err != nil {
			h.log.Error("store upload", zap.String("key", key), zap.Error(err))
			response.InternalError(c, err)
			return
		}

		s, ok := h.views.CreateWith(c, k.Def, map[string]any{
			k.Def.Fields[0]: key,
			"original_name": filepath.Base(header.Filename),
			"size":          header.Size,
			"content_type":  contentType,
		})
		if !ok {
			if err := h.store.Delete(ctx, key); err != nil {
				h.log.Warn("drop orphaned upload", zap.String("key", key), zap.Error(err))
			}
			return
		}
		response.Created(c, s.Representation())
	}
}

func (h *Handler) reject(c *gin.Context, k Kind, msg string) {
	field := k.Def.Fields[0]
	response.ValidationFailed(c, msg, map[string][]string{field: {msg}})
}

func (h *Handler) imageAllowed(name, contentType string) bool {
	if !strings.HasPrefix(contentType, "image/") {
		return false
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	for _, f := range h.limits.ImageFormats {
		if f == ext {
			return true
		}
	}
	return false
}

// formFile accepts the file under the entity's field name or under "file".
func formFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	header, err := c.FormFile(field)
	if err == nil || field == "file" {
		return header, err
	}
	if fallback, ferr := c.FormFile("file"); ferr == nil {
		return fallback, nil
	}
	return nil, err
}

// sniff detects the content type from the first 512 bytes.
func sniff(header *multipart.FileHeader) (string, error) {
	f, err := header.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && n == 0 && header.Size > 0 {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}
