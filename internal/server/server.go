package server

import (
	"net/http"

	"backend/internal/config"
	"backend/internal/handler"
	"backend/internal/mailer"
	"backend/internal/middleware"
	"backend/internal/oauth"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/session"
	"backend/internal/token"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	cfg    *config.Config
	logger *zap.Logger
	log    *logrus.Logger
}

func NewServer(db *sqlx.DB, cfg *config.Config, logger *zap.Logger, log *logrus.Logger) *Server {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.Default()

	// Initialize server with DB and Logger
	s := &Server{
		router: router,
		db:     db,
		cfg:    cfg,
		logger: logger,
		log:    log,
	}

	router.Use(middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Auth.FrontendOrigin},
		AllowMethods:     []string{"GET", "HEAD", "PUT", "PATCH", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	// Setup routes
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	// Process-wide immutable collaborators, constructed once and passed
	// by handle into everything that needs them.
	codec := token.NewCodec([]byte(s.cfg.Auth.JWTSecret))
	sessions := session.NewManager(codec, s.cfg.Auth.CookieSecure)
	smtpMailer := mailer.NewSMTPMailer(s.cfg.SMTP.Host, s.cfg.SMTP.Port, s.cfg.SMTP.Username,
		s.cfg.SMTP.Password, s.cfg.SMTP.From, s.logger)
	googleClient := oauth.NewGoogleClient(s.cfg.Google.ClientID, s.cfg.Google.ClientSecret)

	// Repositories
	userRepo := repository.NewUserRepository(s.db, s.logger)
	articleRepo := repository.NewArticleRepository(s.db, s.logger)
	journalRepo := repository.NewJournalRepository(s.db, s.logger)
	communityRepo := repository.NewCommunityRepository(s.db, s.logger)

	// Services
	authService := service.NewAuthService(userRepo, codec, smtpMailer, googleClient,
		s.cfg.Auth.FrontendOrigin, s.logger)
	userService := service.NewUserService(userRepo, s.logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, sessions, s.log)
	userHandler := handler.NewUserHandler(userService, sessions, s.log)
	articleHandler := handler.NewArticleHandler(articleRepo, s.log)
	journalHandler := handler.NewJournalHandler(journalRepo, s.log)
	communityHandler := handler.NewCommunityHandler(communityRepo, s.log)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Authentication routes
	authGroup := s.router.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/google", authHandler.GoogleLogin)
	// The verification link carries its own token kind, so it bypasses
	// the session gate.
	authGroup.GET("/verify", authHandler.VerifyEmail)

	// Authenticated routes
	authRequired := s.router.Group("/api")
	authRequired.Use(middleware.AuthMiddleware(codec, userRepo, s.logger))
	{
		authRequired.POST("/auth/logout", authHandler.Logout)

		authRequired.GET("/users/profile", userHandler.Profile)
		authRequired.PUT("/users/profile", userHandler.UpdateProfile)
		authRequired.DELETE("/users/profile", userHandler.DeleteAccount)

		authRequired.GET("/posts", articleHandler.List)
		authRequired.GET("/posts/:id", articleHandler.Get)
		authRequired.POST("/posts", articleHandler.Create)
		authRequired.PUT("/posts/:id", articleHandler.Update)
		authRequired.DELETE("/posts/:id", articleHandler.Delete)

		authRequired.GET("/journals", journalHandler.List)
		authRequired.GET("/journals/:id", journalHandler.Get)
		authRequired.POST("/journals", journalHandler.Create)
		authRequired.PUT("/journals/:id", journalHandler.Update)
		authRequired.DELETE("/journals/:id", journalHandler.Delete)

		community := authRequired.Group("/community")
		community.POST("/community-posts", communityHandler.CreatePost)
		community.GET("/community-posts", communityHandler.ListPosts)
		community.GET("/community-posts/:id", communityHandler.GetPost)
		community.PUT("/community-posts/:id", communityHandler.UpdatePost)
		community.DELETE("/community-posts/:id", communityHandler.DeletePost)
		community.POST("/community-posts/:id/upvote", communityHandler.UpvotePost)
		community.DELETE("/community-posts/:id/upvote", communityHandler.RemovePostUpvote)
		community.POST("/community-posts/:id/report", communityHandler.ReportPost)
		community.POST("/community-posts/:id/comments", communityHandler.CreateComment)
		community.GET("/community-posts/:id/comments", communityHandler.ListComments)
		community.PUT("/community-comments/:commentId", communityHandler.UpdateComment)
		community.DELETE("/community-comments/:commentId", communityHandler.DeleteComment)
		community.POST("/community-comments/:commentId/upvote", communityHandler.UpvoteComment)
		community.DELETE("/community-comments/:commentId/upvote", communityHandler.RemoveCommentUpvote)
		community.POST("/community-comments/:commentId/report", communityHandler.ReportComment)
	}
}

func (s *Server) Run(addr string) {
	s.log.Infof("Server starting on port %s...", addr)
	if err := s.router.Run(addr); err != nil {
		s.log.Fatalf("Server failed to start: %v", err)
	}
}
