package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// Register wires up all API routes on the provided Echo instance.
func Register(e *echo.Echo, store Storage, auth *Auth, deduper Deduper, logger *log.Logger) {
	e.POST("/api/auth/register", register(store, auth))
	e.POST("/api/auth/login", login(store, auth))
	e.POST("/api/auth/logout", logout())
	e.GET("/api/auth/me", getMe(store, auth))

	e.GET("/api/projects", getProjects(store))
	e.GET("/api/projects/:id", getProject(store))
	e.POST("/api/projects", createProject(store, auth))
	e.PUT("/api/projects/reorder", reorderHandler("/api/projects/reorder", auth, logger, decodeProjectsReorder, store.ReorderProjects))
	e.PUT("/api/projects/:id", updateProject(store, auth))
	e.DELETE("/api/projects/:id", deleteProject(store, auth))

	// Category and additional-tech routes sit under /api/skills; they are
	// registered before the :id routes so the static segments win.
	e.GET("/api/skills/categories", getCategories(store))
	e.POST("/api/skills/categories", createCategory(store, auth))
	e.PUT("/api/skills/categories/reorder", reorderHandler("/api/skills/categories/reorder", auth, logger, decodeCategoriesReorder, store.ReorderCategories))
	e.PUT("/api/skills/categories/:id", updateCategory(store, auth))
	e.DELETE("/api/skills/categories/:id", deleteCategory(store, auth))

	e.GET("/api/skills/additional-tech", getAdditionalTech(store))
	e.PUT("/api/skills/additional-tech", putAdditionalTech(store, auth))

	e.GET("/api/skills", getSkills(store))
	e.POST("/api/skills", createSkill(store, auth))
	e.PUT("/api/skills/reorder", reorderHandler("/api/skills/reorder", auth, logger, decodeSkillsReorder, store.ReorderSkills))
	e.PUT("/api/skills/:id", updateSkill(store, auth))
	e.DELETE("/api/skills/:id", deleteSkill(store, auth))

	e.GET("/api/personal", getSingleton(store.FetchPersonal))
	e.PUT("/api/personal", putSingleton(auth, store.UpsertPersonal))
	e.GET("/api/about", getSingleton(store.FetchAbout))
	e.PUT("/api/about", putSingleton(auth, store.UpsertAbout))
	e.GET("/api/contact", getSingleton(store.FetchContact))
	e.PUT("/api/contact", putSingleton(auth, store.UpsertContact))
	e.GET("/api/settings", getSingleton(store.FetchSettings))
	e.PUT("/api/settings", putSingleton(auth, store.UpsertSettings))

	e.POST("/api/messages", postMessage(store))
	e.GET("/api/messages", getMessages(store, auth))
	e.PUT("/api/messages/:id/read", markMessageRead(store, auth))
	e.DELETE("/api/messages/:id", deleteMessage(store, auth))

	e.POST("/api/visitors/track", trackVisit(store, deduper))
	e.GET("/api/visitors/stats", getVisitorStats(store, auth))
	e.GET("/api/visitors/recent", getRecentVisitors(store, auth))

	e.GET("/healthz", healthz(store))

	initVisitTracker(store, deduper, logger)
}

func healthz(_ Storage) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}
