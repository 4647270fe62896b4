package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/domain"
	"storefront/internal/gateway"
	"storefront/internal/httpserver"
	"storefront/internal/migrate"
	"storefront/internal/orders"
	cartrepo "storefront/internal/repository/cart"
	categoryrepo "storefront/internal/repository/category"
	customerrepo "storefront/internal/repository/customer"
	paymentrepo "storefront/internal/repository/payment"
	productrepo "storefront/internal/repository/product"
	tokenrepo "storefront/internal/repository/token"
	anonymoussvc "storefront/internal/service/anonymous"
	cartsvc "storefront/internal/service/cart"
	categorysvc "storefront/internal/service/category"
	customersvc "storefront/internal/service/customer"
	paymentsvc "storefront/internal/service/payment"
	productsvc "storefront/internal/service/product"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	if err := migrate.Apply(ctx, dbpool); err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	rdb, err := db.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Fatalf("connect to redis: %v", err)
	}
	defer rdb.Close()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	productService := productsvc.New(productRepo)
	categoryService := categorysvc.New(categoryrepo.NewPostgres(dbpool))

	customerService := customersvc.New(
		customerrepo.NewPostgres(dbpool, logger),
		tokenrepo.NewPostgres(dbpool),
	)
	anonymousService := anonymoussvc.New()

	deps := httpserver.Deps{
		CustomerSvc: customerService,
		AccountSvc:  customerService,
		AnonSvc:     anonymousService,
		CORSOrigins: cfg.CORSOrigins,
	}

	// With no external catalog configured the local product table serves
	// both catalog reads and cart-time variant resolution.
	var cartCatalog interface {
		GetProduct(ctx context.Context, productID string) (*domain.Product, error)
	}
	if cfg.CatalogURL != "" {
		cartCatalog = catalog.NewHTTP(cfg.CatalogURL)
	} else {
		cartCatalog = productService
		deps.CatalogSvc = productService
		deps.CategorySvc = categoryService
	}

	cartService := cartsvc.New(
		cartrepo.NewLocal(rdb),
		cartrepo.NewRemote(cfg.CartServiceURL),
		cartrepo.NewSelection(rdb),
		cartCatalog,
	)
	deps.CartSvc = cartService

	paymentRepo := paymentrepo.NewPostgres(dbpool)
	methods := []paymentsvc.Method{
		paymentsvc.NewVNPay(cfg.VNPay, cfg.VNPayPollInterval, paymentRepo),
		paymentsvc.NewMoMo(cfg.MoMo, cfg.MoMoPollInterval),
		paymentsvc.NewBankTransfer(cfg.Bank.Accounts, cfg.BankPollInterval, paymentRepo),
		paymentsvc.NewCOD(),
	}
	if cfg.CardGatewayURL != "" {
		methods = append(methods, paymentsvc.NewCard(gateway.NewCard(cfg.CardGatewayURL)))
	}
	paymentService := paymentsvc.New(paymentRepo, orders.NewHTTP(cfg.OrderURL), logger, methods...)
	defer paymentService.Close()
	deps.PaymentSvc = paymentService

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, deps)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
