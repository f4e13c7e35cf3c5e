package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"bawabt.com/labour/backup"
	"bawabt.com/labour/core"
	"bawabt.com/labour/infrastructure/communication"
	"bawabt.com/labour/infrastructure/devops"
	"bawabt.com/labour/storage"
	"bawabt.com/labour/web/handlers"
	"bawabt.com/labour/web/handlers/attendance"
	"bawabt.com/labour/web/middlewares"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	cfg, err := devops.Load(ctx)
	if err != nil {
		log.Fatalf("load configuration: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("jwtSecret is required")
	}

	db, err := core.Connect(cfg.DSN, cfg.MaxConnections)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	if err := core.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	store := storage.New(db)
	audit := core.NewAuditTrail(store)
	notifier := communication.NewSlack(cfg.SlackToken, communication.SlackOption{
		InfoChannelID:  cfg.SlackInfoCh,
		ErrorChannelID: cfg.SlackErrorCh,
	})

	backupSvc := &backup.Service{
		DB:     db,
		Bucket: cfg.S3Bucket,
		Prefix: cfg.BackupPrefix,
		Keep:   cfg.BackupKeep,
	}
	var scheduler *backup.Scheduler
	if cfg.S3Bucket != "" {
		scheduler, err = backup.NewScheduler(backupSvc, cfg.BackupSchedule, audit, notifier)
		if err != nil {
			log.Fatalf("backup scheduler: %v", err)
		}
		scheduler.Start()
	}

	jwtSecret := []byte(cfg.JWTSecret)

	r := gin.Default()
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": "labour-api"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/auth/login", handlers.LoginHandler(db, audit, jwtSecret))

	protected := api.Group("")
	protected.Use(middlewares.Authentication(jwtSecret))
	{
		protected.GET("/auth/me", handlers.CurrentUserHandler(db))
		protected.POST("/auth/change-password", handlers.ChangePasswordHandler(db, audit))

		attendance.Register(protected, store, audit)

		supervisor := middlewares.RequireSupervisor()
		manager := middlewares.RequireManager()

		protected.GET("/employees", handlers.ListEmployeesHandler(db))
		protected.GET("/employees/:id", handlers.GetEmployeeHandler(db))
		protected.POST("/employees", supervisor, handlers.CreateEmployeeHandler(db, audit))
		protected.PUT("/employees/:id", supervisor, handlers.UpdateEmployeeHandler(db, audit))
		protected.DELETE("/employees/:id", manager, handlers.DeleteEmployeeHandler(db, audit))

		protected.GET("/sites", handlers.ListSitesHandler(db))
		protected.GET("/sites/:id", handlers.GetSiteHandler(db))
		protected.POST("/sites", manager, handlers.CreateSiteHandler(db, audit))
		protected.PUT("/sites/:id", manager, handlers.UpdateSiteHandler(db, audit))
		protected.DELETE("/sites/:id", manager, handlers.DeleteSiteHandler(db, audit))

		protected.GET("/site-expenses", handlers.ListSiteExpensesHandler(db))
		protected.POST("/site-expenses", supervisor, handlers.CreateSiteExpenseHandler(db, audit))
		protected.DELETE("/site-expenses/:id", manager, handlers.DeleteSiteExpenseHandler(db, audit))

		protected.GET("/users", manager, handlers.ListUsersHandler(db))
		protected.POST("/users", manager, handlers.CreateUserHandler(db, audit))
		protected.PUT("/users/:id", manager, handlers.UpdateUserHandler(db, audit))
		protected.DELETE("/users/:id", manager, handlers.DeleteUserHandler(db, audit))

		protected.GET("/payroll/:year/:month", manager, handlers.MonthlyPayrollHandler(db, audit))
		protected.GET("/payroll/:year/:month/export", manager, handlers.ExportPayrollHandler(db, audit))

		protected.GET("/audit", manager, handlers.ListAuditLogsHandler(db))

		protected.POST("/backup/run", manager, handlers.RunBackupHandler(backupSvc, audit))
		protected.GET("/backup", manager, handlers.ListBackupsHandler(backupSvc))

		protected.POST("/uploads", handlers.UploadHandler(cfg.S3Bucket, cfg.UploadPrefix))
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	// On SIGINT/SIGTERM, drain in-flight requests and wait for a running
	// backup before exiting.
	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-stopCtx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	if scheduler != nil {
		scheduler.Stop()
	}
}
