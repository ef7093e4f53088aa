package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DailyBread/controllers"
	"github.com/DailyBread/initializers"
	"github.com/DailyBread/middlewares"
	"github.com/DailyBread/services"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	initializers.LoadEnv()

	cfg, err := initializers.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if cfg == nil {
		return
	}

	db := initializers.ConnectDB(cfg.DBURL)
	defer db.Close()

	if !cfg.SkipMigrations {
		version, err := initializers.RunMigrations(db)
		if err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		log.Printf("Database schema at version %d", version)
	}

	services.InitEmailService(cfg.ResendAPIKey, cfg.ResendFromEmail, cfg.ModerationAlertEmail)
	if cfg.FirebaseAuthEnabled {
		services.InitFirebaseAuthService(cfg.FirebaseCredentials)
	}

	if cfg.SweepInterval > 0 {
		content := services.NewContentService(initializers.DB, cfg.PublishLocation)
		sweeper := services.NewSweeper(content, cfg.SweepInterval, cfg.RequestTimeout)
		sweeper.Start()
		defer sweeper.Stop()
		log.Printf("Auto-publish sweep every %s", cfg.SweepInterval)
	}

	router := setupRouter(cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middlewares.CorsSettings(cfg.CORSOrigins).Handler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-serverErrChan:
		log.Printf("Server error: %v", err)
	}

	log.Println("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped")
	}
}

func setupRouter(cfg *initializers.Config) *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.RequestTimeout(cfg.RequestTimeout))

	getKey := func(c *gin.Context) string {
		if gin.Mode() == gin.DebugMode {
			return c.FullPath()
		}
		return c.ClientIP()
	}

	router.POST("/login", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.UserLogin)
	router.POST("/signup", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.PublicUserSignup)
	router.POST("/auth/firebase", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.FirebaseLogin)
	router.GET("/check-username", middlewares.RateLimitMiddleware(5, 5, getKey), controllers.CheckUsernameAvailability)
	router.GET("/ping", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.Ping)

	// Password reset endpoints
	router.POST("/auth/forgot-password", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.ForgotPassword)
	router.POST("/auth/verify-reset-code", middlewares.RateLimitMiddleware(5, 5, getKey), controllers.VerifyResetCode)
	router.POST("/auth/reset-password", middlewares.RateLimitMiddleware(2, 2, getKey), controllers.ResetPassword)

	auth := router.Group("/")
	auth.Use(middlewares.CheckAuth)
	auth.Use(middlewares.RateLimitMiddleware(10, 10, getKey))
	{
		// user routes
		auth.GET("/users/me", controllers.GetUserProfile)
		auth.PATCH("/users/me", controllers.UpdateUserProfile)
		auth.POST("/users/me/premium", controllers.UpgradeToPremium)

		// devotional content
		auth.GET("/content/today", controllers.GetTodayContent)
		auth.GET("/content/latest", controllers.GetLatestContent)
		auth.GET("/content/:date_key", controllers.GetContentByDate)
		auth.POST("/content/:date_key/open", controllers.RecordContentOpen)
		auth.POST("/content/:date_key/pray", controllers.PrayForContent)

		// community prayer requests
		auth.GET("/prayer-requests", controllers.GetPrayerFeed)
		auth.POST("/prayer-requests", controllers.CreatePrayerRequest)
		auth.GET("/prayer-requests/:request_id", controllers.GetPrayerRequest)
		auth.DELETE("/prayer-requests/:request_id", controllers.DeletePrayerRequest)

		auth.GET("/prayer-requests/:request_id/pray", controllers.GetPrayStatus)
		auth.POST("/prayer-requests/:request_id/pray", controllers.PrayForRequest)
		auth.DELETE("/prayer-requests/:request_id/pray", controllers.UnprayForRequest)

		auth.POST("/prayer-requests/:request_id/flag", controllers.FlagPrayerRequest)

		auth.GET("/prayer-requests/:request_id/comments", controllers.GetPrayerComments)
		auth.POST("/prayer-requests/:request_id/comments", controllers.CreateComment)
		auth.DELETE("/prayer-requests/:request_id/comments/:comment_id", controllers.DeleteComment)

		// journal
		auth.GET("/journal", controllers.GetJournalEntries)
		auth.POST("/journal", controllers.CreateJournalEntry)
		auth.PUT("/journal/:entry_id", controllers.UpdateJournalEntry)
		auth.DELETE("/journal/:entry_id", controllers.DeleteJournalEntry)

		//admin only routes
		admin := auth.Group("/admin")
		admin.Use(middlewares.CheckAdmin)
		admin.Use(middlewares.RateLimitMiddleware(5, 5, getKey))
		{
			admin.GET("/dashboard", controllers.GetAdminDashboard)

			admin.POST("/content/sweep", controllers.SweepScheduledContent)
			admin.GET("/content", controllers.ListAdminContent)
			admin.GET("/content/:date_key", controllers.GetAdminContent)
			admin.PUT("/content/:date_key", controllers.SaveContent)
			admin.DELETE("/content/:date_key", controllers.DeleteContent)

			admin.GET("/flagged", controllers.GetFlaggedRequests)
			admin.POST("/flagged/:flag_id/approve", controllers.ApproveFlaggedRequest)
			admin.POST("/flagged/:flag_id/reject", controllers.RejectFlaggedRequest)

			admin.GET("/users", controllers.GetAllUsers)
			admin.PATCH("/users/:user_profile_id", controllers.AdminUpdateUser)

			admin.POST("/alerts/test", controllers.TestModerationAlert)
		}
	}

	return router
}
