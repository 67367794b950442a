package common

import (
	"github.com/gin-gonic/gin"
	"github.com/hirehub/core/internal/serializer"
)

// Guards are the auth middlewares a route set chooses from.
type Guards struct {
	Auth     gin.HandlerFunc
	Optional gin.HandlerFunc
}

// Pick returns the middleware for a view: Auth unless public.
func (g Guards) Pick(public bool) gin.HandlerFunc {
	if public {
		if g.Optional != nil {
			return g.Optional
		}
		return func(c *gin.Context) { c.Next() }
	}
	return g.Auth
}

// ViewSet exposes one entity as a REST resource. Nil definitions leave the
// matching routes out.
type ViewSet struct {
	Prefix   string
	Entity   string
	List     *serializer.Definition
	Retrieve *serializer.Definition
	Create   *serializer.Definition
	Update   *serializer.Definition
	// Deletable adds DELETE /:id/.
	Deletable bool
	// Public skips the authentication requirement.
	Public bool
}

// Register mounts vs under rg:
//
//	GET    /                  list
//	POST   /                  create
//	GET    /create/meta/      empty form description
//	GET    /:id/              retrieve
//	PUT    /:id/              update
//	PATCH  /:id/              partial update
//	GET    /:id/update/meta/  pre-filled form description
//	DELETE /:id/              soft delete
func (v *Views) Register(rg *gin.RouterGroup, g Guards, vs ViewSet) {
	grp := rg.Group(vs.Prefix, g.Pick(vs.Public))

	if vs.List != nil {
		grp.GET("/", v.List(vs.List))
	}
	if vs.Create != nil {
		grp.POST("/", v.Create(vs.Create))
		grp.GET("/create/meta/", v.CreateMeta(vs.Create))
	}
	if vs.Retrieve != nil {
		grp.GET("/:id/", v.Retrieve(vs.Retrieve))
	}
	if vs.Update != nil {
		grp.PUT("/:id/", v.Update(vs.Update))
		grp.PATCH("/:id/", v.Update(vs.Update))
		grp.GET("/:id/update/meta/", v.UpdateMeta(vs.Update))
	}
	if vs.Deletable {
		grp.DELETE("/:id/", v.Delete(vs.Entity))
	}
}
