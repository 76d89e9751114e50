package app

import (
	"exam_prep_backend/internal/config"
	"exam_prep_backend/internal/middleware"
	"exam_prep_backend/internal/model"
	"exam_prep_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由（无需登录）
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		a.registerStudentRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerStudentRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/me", c.auth.Me)

	// 内容浏览
	group.GET("/papers", c.content.ListPapers)
	group.GET("/papers/:paperId/sections", c.content.ListSections)
	group.GET("/sections/:sectionId/subsections", c.content.ListSubsections)

	// 考试会话
	group.POST("/tests", c.test.StartTest)
	group.GET("/tests", c.test.ListAttempts)
	group.GET("/tests/:id", c.test.GetAttempt)
	group.POST("/tests/:id/answers", c.test.SubmitAnswer)
	group.POST("/tests/:id/next", c.test.NextQuestion)
	group.POST("/tests/:id/finish", c.test.FinishAttempt)

	// 校准与看板
	group.POST("/calibration/reset", c.test.ResetCalibration)
	group.GET("/dashboard", c.dashboard.GetDashboard)
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		// 注册白名单
		admin.POST("/whitelist", c.whitelist.Add)
		admin.GET("/whitelist", c.whitelist.List)
		admin.DELETE("/whitelist/:email", c.whitelist.Remove)

		// 试卷与章节
		admin.POST("/papers", c.content.CreatePaper)
		admin.PUT("/papers/:id", c.content.UpdatePaper)
		admin.POST("/papers/:paperId/sections", c.content.CreateSection)
		admin.POST("/sections/:sectionId/subsections", c.content.CreateSubsection)

		// 题库
		admin.POST("/questions", c.content.CreateQuestion)
		admin.GET("/questions", c.content.ListQuestions)
		admin.PUT("/questions/:id", c.content.UpdateQuestion)
		admin.DELETE("/questions/:id", c.content.DeleteQuestion)
		admin.POST("/questions/:id/image", c.content.UploadQuestionImage)
	}
}
