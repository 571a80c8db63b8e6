package main

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"

	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/admin"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/alerts"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/config"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/db"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/logger"
	mware "github.com/tasniazannat65/micro-task-earning-platform-server/internal/middleware"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/notification"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/payment"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/submission"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/task"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/user"
	"github.com/tasniazannat65/micro-task-earning-platform-server/internal/withdrawal"
)

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func main() {
	logger.Init()
	defer logger.Log.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal("failed to load config", zap.Error(err))
	}

	db.Init(cfg.DatabaseURL)

	stripe.Key = cfg.StripeSecret
	payment.SiteDomain = cfg.SiteDomain

	alerts.ConfigureMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	alerts.Init(cfg.RedisAddr)

	e := echo.New()
	e.Validator = &requestValidator{validate: validator.New()}

	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Welcome to Zentaskly")
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/ready", func(c echo.Context) error {
		if err := db.Conn.Ping(context.Background()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	})

	// Public signup, rate limited: clients call it on every login
	signup := e.Group("/users")
	signup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))
	signup.POST("", user.Create)

	// Authenticated routes
	api := e.Group("")
	api.Use(mware.JWTMiddleware)

	api.GET("/users/me", user.Me)
	api.GET("/users/:email", user.GetByEmail)
	api.GET("/notifications", notification.List)

	// Buyer
	api.POST("/tasks", task.Create, mware.RequireRole("buyer"))
	api.GET("/buyer/tasks/:email", task.ListForBuyer, mware.RequireRole("buyer"))
	api.PATCH("/buyer/tasks/:id", task.Update, mware.RequireRole("buyer"))
	api.DELETE("/buyer/tasks/:id", task.Delete, mware.RequireRole("buyer"))
	api.GET("/buyer/home-stats/:email", task.BuyerHomeStats)
	api.GET("/buyer/pending-submissions/:email", submission.PendingForBuyer)
	api.PATCH("/buyer/submission/approve/:id", submission.Approve, mware.RequireRole("buyer"))
	api.PATCH("/buyer/submission/reject/:id", submission.Reject, mware.RequireRole("buyer"))

	// Worker
	api.GET("/worker/task-list", task.ListOpen, mware.RequireRole("worker"))
	api.GET("/worker/task-details/:id", task.Details, mware.RequireRole("worker"))
	api.POST("/worker/task-submit/:id", submission.Submit, mware.RequireRole("worker"))
	api.GET("/worker/my-submissions/:email", submission.MineForWorker)
	api.GET("/worker/approved-submissions/:email", submission.ApprovedForWorker, mware.RequireRole("worker"))
	api.GET("/worker/home-stats/:email", submission.WorkerHomeStats, mware.RequireRole("worker"))
	api.POST("/worker/withdraw", withdrawal.Request, mware.RequireRole("worker"))
	api.GET("/worker/withdrawals/:email", withdrawal.ListForWorker, mware.RequireRole("worker"))

	// Payments
	api.POST("/create-checkout-session", payment.CreateCheckoutSession)
	api.POST("/payments/confirm", payment.Confirm)
	api.GET("/payments/history", payment.History, mware.RequireRole("buyer"))

	// Admin
	adminGroup := e.Group("/admin")
	adminGroup.Use(mware.JWTMiddleware)
	adminGroup.Use(mware.RequireRole("admin"))

	adminGroup.GET("/home-stats", admin.HomeStats)
	adminGroup.GET("/withdraw-requests", withdrawal.ListPending)
	adminGroup.PATCH("/withdraw-approve/:id", withdrawal.Approve)
	adminGroup.GET("/manage-users", admin.ListUsers)
	adminGroup.DELETE("/manage-users/:id", admin.DeleteUser)
	adminGroup.PATCH("/manage-users/:id/role", admin.UpdateUserRole)
	adminGroup.GET("/manage-tasks", admin.ListTasks)
	adminGroup.DELETE("/manage-tasks/:id", admin.DeleteTask)

	logger.Log.Info("Zentaskly listening", zap.String("port", cfg.Port))
	if err := e.Start(":" + cfg.Port); err != nil {
		logger.Log.Fatal("server error", zap.Error(err))
	}
}
