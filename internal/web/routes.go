package web

import (
	"babymassage/webapp/internal/config"
	"babymassage/webapp/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRoutes wires the client-visible routes onto the Gin engine.
func SetupRoutes(router *gin.Engine, store *session.Store, cfg config.UploadConfig, logger *zap.Logger) {
	router.SetHTMLTemplate(loadTemplates())
	router.Use(RequestLogger(logger))
	router.Use(LoadSession(store))

	authHandler := NewAuthHandler(store, logger)
	studentHandler := NewStudentHandler(store, cfg.MaxBytes, logger)
	teacherHandler := NewTeacherHandler(store, logger)

	// Public pages
	router.GET("/", authHandler.Home)
	router.GET("/login", authHandler.LoginForm)
	router.POST("/login", authHandler.Login)
	router.GET("/register", authHandler.RegisterForm)
	router.POST("/register", authHandler.Register)
	router.GET("/unauthorized", authHandler.Unauthorized)
	router.POST("/logout", authHandler.Logout)

	// Student pages (authentication required)
	student := router.Group("/student")
	student.Use(RequireAuth())
	{
		student.GET("/upload", studentHandler.UploadForm)
		student.POST("/upload", studentHandler.Upload)
		student.GET("/upload/progress", studentHandler.UploadProgress)
		student.GET("/videos", studentHandler.Videos)
		student.GET("/video/:id", studentHandler.VideoDetail)
	}

	// Teacher pages (teacher role required)
	teacher := router.Group("/teacher")
	teacher.Use(RequireAuth(), RequireTeacher())
	{
		teacher.GET("/videos", teacherHandler.Videos)
		teacher.GET("/video/:id", teacherHandler.VideoDetail)
		teacher.POST("/video/:id/feedback", teacherHandler.SubmitFeedback)
		teacher.POST("/video/:id/timestamps", teacherHandler.SubmitTimestamp)
		teacher.GET("/student/:id", teacherHandler.StudentVideos)
	}
}
