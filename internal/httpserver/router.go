package httpserver

import (
	"context"
	"log"
	"net/url"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
	customersvc "storefront/internal/service/customer"
	paymentsvc "storefront/internal/service/payment"
)

// cartService is the slice of the cart engine the handlers use.
type cartService interface {
	Get(ctx context.Context, sess cartsvc.Session) (*domain.Cart, error)
	AddItem(ctx context.Context, sess cartsvc.Session, in cartsvc.AddItemInput) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, sess cartsvc.Session, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, sess cartsvc.Session, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context, sess cartsvc.Session) (*domain.Cart, error)
	ToggleSelect(ctx context.Context, sess cartsvc.Session, itemID string) (*domain.Cart, error)
	SelectAll(ctx context.Context, sess cartsvc.Session, selected bool) (*domain.Cart, error)
	CompleteCheckout(ctx context.Context, sess cartsvc.Session) (*domain.Cart, error)
	MergeOnLogin(ctx context.Context, anonymousID, customerID string) (*domain.Cart, error)
}

// paymentService is the slice of the payment orchestrator the handlers use.
type paymentService interface {
	Initiate(ctx context.Context, orderID string, method domain.PaymentMethod, params map[string]string) (*paymentsvc.InitiateResponse, error)
	Confirm(ctx context.Context, paymentID string) (*domain.Payment, error)
	Check(ctx context.Context, orderID string) (*paymentsvc.CheckResult, error)
	HandleVNPayReturn(ctx context.Context, query url.Values) (*domain.Payment, error)
	HandleMoMoReturn(ctx context.Context, query url.Values) (*domain.Payment, error)
	BankQR(ctx context.Context, bankID, orderID string) (string, error)
	SupportsManualConfirm(method domain.PaymentMethod) bool
}

// anonymousService issues and resolves anonymous shopper sessions.
type anonymousService interface {
	Issue(ctx context.Context) (accessToken, refreshToken, anonymousID string, err error)
	Refresh(ctx context.Context, refreshToken string) (accessToken, anonymousID string, err error)
	LookupByToken(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, anonymousID string)
	AccessTTLSeconds() int
}

// customerSessions validates customer bearer tokens against the account
// system and returns the customer id that owns the remote cart.
type customerSessions interface {
	Validate(ctx context.Context, token string) (string, error)
}

// customerAccounts is the signup/login surface of the account system.
type customerAccounts interface {
	Signup(ctx context.Context, in customersvc.SignupInput) (*domain.Customer, error)
	Login(ctx context.Context, email, password string) (*domain.Customer, string, string, error)
	AccessTTLSeconds() int
}

// catalogReader serves catalog reads when the catalog is managed locally.
type catalogReader interface {
	List(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

type categoryLister interface {
	List(ctx context.Context) ([]domain.Category, error)
}

// Deps carries the services the router wires into handlers. CatalogSvc and
// CategorySvc are optional: they stay nil when an external catalog serves
// product data.
type Deps struct {
	CartSvc     cartService
	PaymentSvc  paymentService
	AnonSvc     anonymousService
	CustomerSvc customerSessions
	AccountSvc  customerAccounts
	CatalogSvc  catalogReader
	CategorySvc categoryLister
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	if len(deps.CORSOrigins) > 0 {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = deps.CORSOrigins
		cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
		router.Use(cors.New(cfg))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	router.POST("/auth/anonymous", anonymousTokenHandler(deps.AnonSvc))
	router.POST("/auth/anonymous/refresh", anonymousRefreshHandler(deps.AnonSvc))
	if deps.AccountSvc != nil {
		router.POST("/auth/signup", signupHandler(deps.AccountSvc))
		router.POST("/auth/login", loginHandler(deps.AccountSvc))
	}

	if deps.CatalogSvc != nil {
		catalog := router.Group("/catalog")
		catalog.GET("/products", listProductsHandler(deps.CatalogSvc))
		catalog.GET("/products/:productId", getProductHandler(deps.CatalogSvc))
		if deps.CategorySvc != nil {
			catalog.GET("/categories", listCategoriesHandler(deps.CategorySvc))
		}
	}

	cart := router.Group("/cart", sessionMiddleware(deps.AnonSvc, deps.CustomerSvc))
	{
		cart.GET("", getCartHandler(deps.CartSvc))
		cart.DELETE("", clearCartHandler(deps.CartSvc))
		cart.POST("/items", addItemHandler(deps.CartSvc))
		cart.PUT("/items/:itemId", updateQuantityHandler(deps.CartSvc))
		cart.DELETE("/items/:itemId", removeItemHandler(deps.CartSvc))
		cart.POST("/items/:itemId/select", toggleSelectHandler(deps.CartSvc))
		cart.POST("/select-all", selectAllHandler(deps.CartSvc))
		cart.POST("/checkout", checkoutHandler(deps.CartSvc))
		cart.POST("/merge", mergeCartHandler(deps.CartSvc, deps.AnonSvc))
	}

	payments := router.Group("/payments")
	{
		payments.POST("/process", processPaymentHandler(deps.PaymentSvc))
		payments.GET("/check/:orderId", checkPaymentHandler(deps.PaymentSvc))
		payments.POST("/bank-qr", bankQRHandler(deps.PaymentSvc))
		payments.POST("/confirm/:paymentId", confirmPaymentHandler(deps.PaymentSvc))
		payments.GET("/return/vnpay", vnpayReturnHandler(deps.PaymentSvc))
		payments.GET("/return/momo", momoReturnHandler(deps.PaymentSvc))
	}

	return router, nil
}
