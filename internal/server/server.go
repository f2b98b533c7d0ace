package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "projecthub/docs"
	"projecthub/internal/config"
	"projecthub/internal/handler"
	"projecthub/internal/logger"
	"projecthub/internal/mailer"
	"projecthub/internal/middleware"
	"projecthub/internal/rbac"
	"projecthub/internal/repository"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
}

// Init connects to the database, migrates the schema and builds the router.
func Init(cfg *config.Config) (*Server, error) {
	db, err := OpenDB(cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return New(cfg, db, mailer.New(cfg.SMTP)), nil
}

// New wires repositories, the access guard and handlers onto a gin engine.
func New(cfg *config.Config, db *gorm.DB, sender mailer.Sender) *Server {
	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(logger.GinRecovery(), logger.GinLogger(), middleware.CORS(cfg.CORSOrigins))

	userRepo := repository.NewUserRepository(db)
	verifyRepo := repository.NewVerificationRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	columnRepo := repository.NewColumnRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	labelRepo := repository.NewLabelRepository(db)
	store := repository.NewAccessStore(db)

	guard := rbac.NewGuard(store, rbac.DefaultPermissions())
	authz := middleware.NewAuthorizer(guard)

	userHandler := handler.NewUserHandler(userRepo, verifyRepo, sender, handler.AuthConfig{
		JWTSecret: cfg.JWTSecret,
		JWTExpiry: cfg.JWTExpiry,
		OTPTTL:    cfg.OTPTTL,
	})
	projectHandler := handler.NewProjectHandler(projectRepo)
	memberHandler := handler.NewMemberHandler(rbac.NewDirectory(store), membershipRepo, userRepo)
	boardHandler := handler.NewBoardHandler(boardRepo)
	columnHandler := handler.NewColumnHandler(columnRepo)
	issueHandler := handler.NewIssueHandler(issueRepo, labelRepo)
	labelHandler := handler.NewLabelHandler(labelRepo)

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	public := r.Group("/auth")
	public.Use(middleware.RateLimit(cfg.AuthRPS, cfg.AuthBurst))
	{
		public.POST("/register", userHandler.Register)
		public.POST("/verify-email", userHandler.VerifyEmail)
		public.POST("/resend-otp", userHandler.ResendOTP)
		public.POST("/login", userHandler.Login)
		public.POST("/forgot-password", userHandler.ForgotPassword)
		public.POST("/reset-password", userHandler.ResetPassword)
	}

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		authorized.GET("/me", userHandler.Me)

		// Projects
		authorized.POST("/projects", projectHandler.Create)
		authorized.GET("/projects", projectHandler.List)
		authorized.GET("/projects/:id", authz.Project(rbac.OpProjectRead, "id"), projectHandler.Get)
		authorized.PUT("/projects/:id", authz.Project(rbac.OpProjectUpdate, "id"), projectHandler.Update)
		authorized.DELETE("/projects/:id", authz.Project(rbac.OpProjectDelete, "id"), projectHandler.Delete)
		authorized.POST("/projects/:id/transfer", authz.Project(rbac.OpProjectTransferOwnership, "id"), projectHandler.TransferOwnership)

		// Members
		authorized.GET("/projects/:id/members", authz.Project(rbac.OpProjectRead, "id"), memberHandler.List)
		authorized.POST("/projects/:id/members", authz.Project(rbac.OpProjectManageMembers, "id"), memberHandler.Add)
		authorized.PUT("/projects/:id/members/:user_id", authz.Project(rbac.OpProjectManageMembers, "id"), memberHandler.UpdateRole)
		authorized.DELETE("/projects/:id/members/:user_id", authz.Project(rbac.OpProjectManageMembers, "id"), memberHandler.Remove)
		authorized.POST("/projects/:id/leave", authz.Project(rbac.OpProjectRead, "id"), memberHandler.Leave)

		// Boards
		authorized.POST("/projects/:id/boards", authz.Project(rbac.OpBoardCreate, "id"), boardHandler.Create)
		authorized.GET("/projects/:id/boards", authz.Project(rbac.OpBoardRead, "id"), boardHandler.ListByProject)
		authorized.GET("/boards/:id", authz.Board(rbac.OpBoardRead, "id"), boardHandler.GetByID)
		authorized.PUT("/boards/:id", authz.Board(rbac.OpBoardUpdate, "id"), boardHandler.Update)
		authorized.DELETE("/boards/:id", authz.Board(rbac.OpBoardDelete, "id"), boardHandler.Delete)

		// Columns
		authorized.POST("/boards/:id/columns", authz.Board(rbac.OpColumnCreate, "id"), columnHandler.Create)
		authorized.GET("/boards/:id/columns", authz.Board(rbac.OpBoardRead, "id"), columnHandler.GetAll)
		authorized.POST("/boards/:id/columns/reorder", authz.Board(rbac.OpColumnReorder, "id"), columnHandler.ReorderColumns)
		authorized.PUT("/columns/:id", authz.Via(rbac.OpColumnUpdate, "id", "column", columnHandler.BoardOf), columnHandler.Update)
		authorized.DELETE("/columns/:id", authz.Via(rbac.OpColumnDelete, "id", "column", columnHandler.BoardOf), columnHandler.Delete)

		// Issues
		authorized.POST("/columns/:id/issues", authz.Via(rbac.OpIssueCreate, "id", "column", columnHandler.BoardOf), issueHandler.Create)
		authorized.GET("/columns/:id/issues", authz.Via(rbac.OpIssueRead, "id", "column", columnHandler.BoardOf), issueHandler.GetByColumnID)
		authorized.GET("/issues/:id", authz.Issue(rbac.OpIssueRead, "id"), issueHandler.GetByID)
		authorized.PUT("/issues/:id", authz.Issue(rbac.OpIssueUpdate, "id"), issueHandler.Update)
		authorized.DELETE("/issues/:id", authz.Issue(rbac.OpIssueDelete, "id"), issueHandler.Delete)
		authorized.POST("/issues/:id/move", authz.Issue(rbac.OpIssueMove, "id"), issueHandler.MoveIssue)
		authorized.POST("/issues/:id/assign", authz.Issue(rbac.OpIssueAssign, "id"), issueHandler.AssignUser)
		authorized.DELETE("/issues/:id/assign", authz.Issue(rbac.OpIssueAssign, "id"), issueHandler.UnassignUser)
		authorized.GET("/issues/:id/labels", authz.Issue(rbac.OpIssueRead, "id"), issueHandler.GetIssueLabels)
		authorized.POST("/issues/:id/labels/:label_id", authz.Issue(rbac.OpIssueUpdate, "id"), issueHandler.AddLabel)
		authorized.DELETE("/issues/:id/labels/:label_id", authz.Issue(rbac.OpIssueUpdate, "id"), issueHandler.RemoveLabel)

		// Labels
		authorized.POST("/boards/:id/labels", authz.Board(rbac.OpLabelManage, "id"), labelHandler.Create)
		authorized.GET("/boards/:id/labels", authz.Board(rbac.OpBoardRead, "id"), labelHandler.GetByBoardID)
		authorized.PUT("/labels/:id", authz.Via(rbac.OpLabelManage, "id", "label", labelHandler.BoardOf), labelHandler.Update)
		authorized.DELETE("/labels/:id", authz.Via(rbac.OpLabelManage, "id", "label", labelHandler.BoardOf), labelHandler.Delete)
		authorized.GET("/labels/:id/issues", authz.Via(rbac.OpIssueRead, "id", "label", labelHandler.BoardOf), labelHandler.GetIssuesWithLabel)
	}

	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
	}
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx)
}

// Serve listens until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.Config.ServerPort,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("port", s.Config.ServerPort).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	if sqlDB, err := s.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info().Msg("server exited properly")
	return nil
}
