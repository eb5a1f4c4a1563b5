package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmacy-pos/internal/application/service"
	"github.com/sangkips/pharmacy-pos/internal/config"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/internal/infrastructure/database"
	"github.com/sangkips/pharmacy-pos/internal/infrastructure/repository"
	"github.com/sangkips/pharmacy-pos/internal/infrastructure/repository/mongodb"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/handler"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/routes"
	"github.com/sangkips/pharmacy-pos/pkg/email"
	"github.com/sangkips/pharmacy-pos/pkg/printer"
	"github.com/sangkips/pharmacy-pos/pkg/utils"
)

// repositories is the storage backend chosen by DB_DRIVER.
type repositories struct {
	users       domainRepo.UserRepository
	medicines   domainRepo.MedicineRepository
	invoices    domainRepo.InvoiceRepository
	movements   domainRepo.StockMovementRepository
	idempotency domainRepo.IdempotencyRepository
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	repos, err := buildRepositories(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize email service
	emailService := email.NewEmailService(email.EmailConfig{
		SMTPHost:     cfg.Email.SMTPHost,
		SMTPPort:     cfg.Email.SMTPPort,
		SMTPUsername: cfg.Email.SMTPUsername,
		SMTPPassword: cfg.Email.SMTPPassword,
		FromName:     cfg.Email.FromName,
		FromEmail:    cfg.Email.FromEmail,
		AlertTo:      cfg.Email.AlertTo,
	})
	notifier := service.NewEmailLowStockNotifier(emailService, cfg.Pharmacy.Name)

	// Initialize thermal printer
	thermalPrinter, err := printer.New(printer.Config{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize printer: %v", err)
		thermalPrinter, _ = printer.New(printer.Config{Type: "none"})
	}

	// Initialize services
	authService := service.NewAuthService(repos.users, jwtManager)
	stockService := service.NewStockService(repos.medicines, repos.movements)
	medicineService := service.NewMedicineService(repos.medicines, stockService)
	importService := service.NewImportService(medicineService, repos.medicines)
	invoiceService := service.NewInvoiceService(
		repos.invoices,
		repos.medicines,
		stockService,
		notifier,
		cfg.Pharmacy.DefaultGSTRate,
	)
	dashboardService := service.NewDashboardService(repos.invoices, repos.medicines, cfg.Pharmacy.LowStockThreshold)
	reportService := service.NewReportService(repos.invoices, repos.medicines, cfg.Pharmacy.LowStockThreshold)
	printerService := service.NewPrinterService(thermalPrinter, invoiceService, entity.ReceiptHeader{
		StoreName: cfg.Pharmacy.Name,
		Address:   cfg.Pharmacy.Address,
		Phone:     cfg.Pharmacy.Phone,
		GSTIN:     cfg.Pharmacy.GSTIN,
	}, cfg.Printer.Width)

	if err := authService.EnsureAdmin(ctx, cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		log.Printf("Warning: Failed to seed admin user: %v", err)
	}

	go purgeIdempotencyKeys(repos.idempotency, time.Hour)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Medicine:  handler.NewMedicineHandler(medicineService, stockService, importService),
		Invoice:   handler.NewInvoiceHandler(invoiceService, printerService),
		Dashboard: handler.NewDashboardHandler(dashboardService, reportService),
		Printer:   handler.NewPrinterHandler(printerService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: repos.idempotency,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s, storage: %s, auth enabled: %t", cfg.App.Env, cfg.Database.Driver, cfg.Auth.Enabled)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}

func buildRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.Database.Driver == database.DriverMongo {
		db, err := database.NewMongoDB(ctx, &cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			return nil, err
		}
		return &repositories{
			users:       mongodb.NewUserRepository(db),
			medicines:   mongodb.NewMedicineRepository(db),
			invoices:    mongodb.NewInvoiceRepository(db),
			movements:   mongodb.NewStockMovementRepository(db),
			idempotency: mongodb.NewIdempotencyRepository(db),
		}, nil
	}

	db, err := database.NewGormDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrate(db); err != nil {
		return nil, err
	}
	return &repositories{
		users:       repository.NewUserRepository(db),
		medicines:   repository.NewMedicineRepository(db),
		invoices:    repository.NewInvoiceRepository(db),
		movements:   repository.NewStockMovementRepository(db),
		idempotency: repository.NewIdempotencyRepository(db),
	}, nil
}

// purgeIdempotencyKeys drops expired keys on a fixed interval.
func purgeIdempotencyKeys(repo domainRepo.IdempotencyRepository, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		if err := repo.DeleteExpired(context.Background()); err != nil {
			log.Printf("Warning: Failed to purge idempotency keys: %v", err)
		}
	}
}
