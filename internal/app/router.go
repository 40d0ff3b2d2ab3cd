package app

import (
	"course_risk_backend/docs"
	"course_risk_backend/internal/config"
	"course_risk_backend/internal/middleware"
	"course_risk_backend/internal/model"
	"course_risk_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		courses := authGroup.Group("/courses")
		{
			courses.POST("", c.course.CreateCourse)
			courses.GET("", c.course.ListCourses)
			courses.GET("/:id", c.course.GetCourse)
			courses.PUT("/:id", c.course.RenameCourse)
			courses.DELETE("/:id", c.course.DeleteCourse)

			courses.POST("/:id/syllabus/manual", c.course.SetManualSyllabus)
			courses.POST("/:id/syllabus/upload", c.course.UploadSyllabus)
			courses.GET("/:id/weights", c.course.GetWeights)

			courses.POST("/:id/exams", c.course.SubmitExam)
			courses.GET("/:id/exams", c.course.ListExams)
			courses.POST("/:id/weeks", c.course.SubmitWeek)
			courses.GET("/:id/weeks", c.course.ListWeeks)

			courses.GET("/:id/risk", c.risk.GetCourseRisk)
			courses.POST("/:id/predict", c.risk.Predict)
			courses.POST("/:id/whatif", c.risk.WhatIf)
			courses.GET("/:id/suggestions", c.risk.GetSuggestions)
		}

		admin := authGroup.Group("/admin")
		admin.Use(middleware.RoleMiddleware(model.Admin))
		{
			admin.GET("/students", c.admin.ListStudents)
			admin.GET("/students/:id", c.admin.GetStudent)
			admin.GET("/students/:id/courses", c.admin.GetStudentCourses)
			admin.GET("/students/:id/courses/:courseId/risk", c.admin.GetStudentCourseRisk)
			admin.GET("/ml/health", c.admin.MLHealth)
			admin.GET("/ml/feature-importance", c.admin.MLFeatureImportance)
		}
	}
}
