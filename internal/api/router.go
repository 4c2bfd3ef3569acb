package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jengzang/mobiledna-go/internal/handler"
	"github.com/jengzang/mobiledna-go/internal/middleware"
	"github.com/jengzang/mobiledna-go/internal/service"
)

// Services are the collaborators the HTTP surface exposes
type Services struct {
	Tasks    *service.AnalysisTaskService
	Features *service.FeatureService
	Apps     *service.AppMetaService
}

// Options configures the router
type Options struct {
	Logger  zerolog.Logger
	Tokens  *middleware.TokenManager
	Limiter *middleware.RateLimiter // nil disables rate limiting
}

// SetupRouter 设置路由
func SetupRouter(svc Services, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger(opts.Logger))
	if opts.Limiter != nil {
		r.Use(middleware.RateLimit(opts.Limiter))
	}

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "mobileDNA feature API is running",
		})
	})

	tasks := handler.NewAnalysisTaskHandler(svc.Tasks)
	features := handler.NewFeatureHandler(svc.Features)
	apps := handler.NewAppHandler(svc.Apps)

	// API 路由组
	api := r.Group("/api/v1", middleware.Auth(opts.Tokens))
	{
		analysis := api.Group("/analysis/tasks")
		{
			analysis.POST("", tasks.CreateTask)
			analysis.GET("", tasks.ListTasks)
			analysis.GET("/:id", tasks.GetTask)
			analysis.DELETE("/:id", tasks.CancelTask)
		}

		runs := api.Group("/features")
		{
			runs.GET("/skills", features.ListSkills)
			runs.GET("/runs", features.ListRuns)
			runs.GET("/runs/:id", features.GetRun)
			runs.GET("/runs/:id/subjects/:subject", features.SubjectFeatures)
		}

		meta := api.Group("/apps")
		{
			meta.GET("/:id", apps.GetApp)
			meta.PUT("/:id", apps.EditApp)
		}
	}

	return r
}
