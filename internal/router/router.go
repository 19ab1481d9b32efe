package router

import (
	"time"

	"github.com/anass1h/Station-sub000/internal/config"
	"github.com/anass1h/Station-sub000/internal/handler"
	"github.com/anass1h/Station-sub000/internal/middleware"
	"github.com/anass1h/Station-sub000/internal/model"
	"github.com/anass1h/Station-sub000/internal/repository"
	"github.com/anass1h/Station-sub000/internal/service"
	"github.com/anass1h/Station-sub000/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	nozzleRepo := repository.NewNozzleRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	cashRegisterRepo := repository.NewCashRegisterRepository(db)
	debtRepo := repository.NewDebtRepository(db)
	priceRepo := repository.NewPriceRepository(db)
	methodRepo := repository.NewPaymentMethodRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	anomalyRepo := repository.NewAnomalyRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	priceSvc := service.NewPriceService(priceRepo, rdb, cfg)
	shiftSvc := service.NewShiftService(shiftRepo, nozzleRepo, cfg, dispatcher)
	reportSvc := service.NewShiftReportService(shiftRepo, saleRepo)
	saleSvc := service.NewSaleService(saleRepo, shiftRepo, catalogRepo, methodRepo, priceSvc)
	cashRegisterSvc := service.NewCashRegisterService(cashRegisterRepo, shiftRepo, debtRepo, methodRepo, reportSvc, cfg, dispatcher)
	debtSvc := service.NewDebtService(debtRepo, userRepo)
	catalogSvc := service.NewCatalogService(nozzleRepo, methodRepo, catalogRepo, anomalyRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	shiftsH := handler.NewShiftsHandler(shiftSvc, reportSvc, catalogSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	cashRegistersH := handler.NewCashRegistersHandler(cashRegisterSvc)
	debtsH := handler.NewDebtsHandler(debtSvc)
	pricesH := handler.NewPricesHandler(priceSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole(model.RolePompiste, model.RoleManager, model.RoleAdmin)
	managerUp := middleware.RequireRole(model.RoleManager, model.RoleAdmin)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		// Shift lifecycle
		shifts := v1.Group("/shifts")
		{
			shifts.POST("", anyRole, shiftsH.Start)
			shifts.GET("", anyRole, shiftsH.List)
			shifts.GET("/:id", anyRole, shiftsH.Get)
			shifts.POST("/:id/end", anyRole, shiftsH.End)
			shifts.POST("/:id/validate", managerUp, shiftsH.Validate)
			shifts.GET("/:id/summary", anyRole, shiftsH.Summary)
			shifts.GET("/:id/sales", anyRole, salesH.ListByShift)
			shifts.GET("/:id/anomalies", managerUp, shiftsH.Anomalies)

			// Reconciliation rides on the shift it settles
			shifts.POST("/:id/cash-register", anyRole, cashRegistersH.Close)
			shifts.GET("/:id/cash-register", anyRole, cashRegistersH.GetByShift)
		}

		// Sales
		v1.POST("/sales", anyRole, salesH.Record)

		// Cash register history — manager review surface
		v1.GET("/cash-registers", managerUp, cashRegistersH.List)

		// Debts — manager-level bookkeeping
		debts := v1.Group("/debts", managerUp)
		{
			debts.POST("", debtsH.Create)
			debts.GET("", debtsH.List)
			debts.GET("/:id", debtsH.Get)
			debts.POST("/:id/payments", debtsH.AddPayment)
			debts.POST("/:id/cancel", debtsH.Cancel)
		}

		// Prices — reads for everyone, writes admin only
		v1.GET("/prices/active", anyRole, pricesH.Active)
		v1.GET("/prices/history", managerUp, pricesH.History)
		v1.POST("/prices", adminOnly, pricesH.Set)

		// Nozzles — reads for everyone (shift start needs the list)
		v1.GET("/nozzles", anyRole, catalogH.ListNozzles)
		v1.GET("/nozzles/:id", anyRole, catalogH.GetNozzle)
		nozzles := v1.Group("/nozzles", adminOnly)
		{
			nozzles.POST("", catalogH.CreateNozzle)
			nozzles.PATCH("/:id/active", catalogH.SetNozzleActive)
		}

		// Payment methods
		v1.GET("/payment-methods", anyRole, catalogH.ListPaymentMethods)
		methods := v1.Group("/payment-methods", adminOnly)
		{
			methods.POST("", catalogH.CreatePaymentMethod)
			methods.PATCH("/:id/active", catalogH.SetPaymentMethodActive)
		}

		// Anomaly review
		v1.GET("/anomalies", managerUp, catalogH.ListAnomalies)

		// Users
		users := v1.Group("/users", adminOnly)
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
			users.DELETE("/:id", usersH.Deactivate)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
