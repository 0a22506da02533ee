package app

import (
	"net/http"

	"github.com/xixhienxix/task-list/internal/config"
	"github.com/xixhienxix/task-list/internal/handlers"
	"github.com/xixhienxix/task-list/internal/metrics"
	"github.com/xixhienxix/task-list/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Setup registers all routes on the given engine. A nil listCache disables
// task list caching.
func Setup(r *gin.Engine, cfg config.Config, log *logrus.Logger, st stores, listCache service.ListCache) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler())
	r.GET("/version", versionHandler(cfg))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))

	accountSvc := service.NewAccountService(st.accounts)
	accountHandler := handlers.NewAccountHandler(accountSvc, log)
	registerAccountRoutes(r, accountHandler)

	taskSvc := service.NewTaskService(st.tasks, listCache, log)
	taskHandler := handlers.NewTaskHandler(taskSvc, log)
	registerTaskRoutes(r, taskHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Task List API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"health":  "/health",
		})
	}
}

// healthHandler is the liveness marker existing monitors poll.
func healthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "API Running!")
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerTaskRoutes(r gin.IRoutes, h *handlers.TaskHandler) {
	r.GET("/tasks", h.List)
	r.POST("/tasks", h.Create)
	r.PUT("/tasks/:id", h.Update)
	r.DELETE("/tasks/:id", h.Delete)
}

func registerAccountRoutes(r gin.IRoutes, h *handlers.AccountHandler) {
	r.POST("/login", h.Login)
	r.POST("/register", h.Register)
}
