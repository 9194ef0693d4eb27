package rest

import (
	authapp "voucher-book-server/internal/application/auth"
	bookapp "voucher-book-server/internal/application/book"
	placementapp "voucher-book-server/internal/application/placement"
	voucherapp "voucher-book-server/internal/application/voucher"
	"voucher-book-server/internal/infrastructure/config"
	otelinfra "voucher-book-server/internal/infrastructure/observability/otel"
	"voucher-book-server/internal/presentation/rest/handler"
	restmiddleware "voucher-book-server/internal/presentation/rest/middleware"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Router REST APIルーター
type Router struct {
	echo             *echo.Echo
	authHandler      *handler.AuthHandler
	placementHandler *handler.PlacementHandler
	voucherHandler   *handler.VoucherHandler
	bookHandler      *handler.BookHandler
}

// NewRouter 新しいRouterを作成
func NewRouter(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	authService *authapp.AuthApplicationService,
	placementService *placementapp.PlacementApplicationService,
	voucherService *voucherapp.VoucherApplicationService,
	bookService *bookapp.BookApplicationService,
) (*Router, error) {
	e := echo.New()

	// Echoのデフォルトエラーハンドラーを無効化（カスタムエラーハンドラーを使用）
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		// エラーハンドリングミドルウェアで処理される
	}

	// ミドルウェアの設定
	setupMiddleware(e, cfg, logger, metrics)

	// ハンドラーの作成
	authHandler := handler.NewAuthHandler(authService)
	placementHandler := handler.NewPlacementHandler(placementService)
	voucherHandler := handler.NewVoucherHandler(voucherService)
	bookHandler := handler.NewBookHandler(bookService)

	// ルーティングの設定
	setupRoutes(e, cfg, logger, authHandler, placementHandler, voucherHandler, bookHandler)

	// Swagger UI / ReDoc統合
	SetupSwagger(e)

	return &Router{
		echo:             e,
		authHandler:      authHandler,
		placementHandler: placementHandler,
		voucherHandler:   voucherHandler,
		bookHandler:      bookHandler,
	}, nil
}

// setupMiddleware ミドルウェアを設定
func setupMiddleware(e *echo.Echo, cfg *config.Config, logger *otelinfra.Logger, metrics *otelinfra.Metrics) {
	// リカバリーミドルウェア
	e.Use(middleware.Recover())

	// CORS設定
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"}, // 本番環境では適切に設定
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// リクエストIDの設定
	e.Use(middleware.RequestID())

	// セキュリティヘッダー
	e.Use(restmiddleware.SecurityHeadersMiddleware())

	// トレーシングミドルウェア
	e.Use(restmiddleware.TracingMiddleware())

	// メトリクスミドルウェア
	e.Use(restmiddleware.MetricsMiddleware(metrics))

	// ログミドルウェア
	e.Use(restmiddleware.LoggingMiddleware(logger))

	// エラーハンドリングミドルウェア
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
}

// setupRoutes ルーティングを設定
func setupRoutes(
	e *echo.Echo,
	cfg *config.Config,
	logger *otelinfra.Logger,
	authHandler *handler.AuthHandler,
	placementHandler *handler.PlacementHandler,
	voucherHandler *handler.VoucherHandler,
	bookHandler *handler.BookHandler,
) {
	// API v1グループ
	api := e.Group("/api/v1")

	// 認証エンドポイント（認証不要）
	api.POST("/auth/token", authHandler.GenerateToken)

	// 認証が必要なエンドポイント
	authGroup := api.Group("", restmiddleware.AuthMiddleware(&cfg.JWT, logger))

	// クーポンブック関連エンドポイント
	authGroup.POST("/books", bookHandler.CreateBook)
	authGroup.GET("/books", bookHandler.ListBooks)
	authGroup.GET("/books/:book_id", bookHandler.GetBook)
	authGroup.DELETE("/books/:book_id", bookHandler.DeleteBook)
	authGroup.POST("/books/:book_id/pages", bookHandler.AddPage)
	authGroup.GET("/books/:book_id/can-publish", bookHandler.CanPublishBook)
	authGroup.POST("/books/:book_id/publish", bookHandler.PublishBook)

	// 配置関連エンドポイント
	authGroup.POST("/pages/:page_id/placements", placementHandler.ProposePlacement)
	authGroup.GET("/pages/:page_id/utilization", placementHandler.GetPageUtilization)
	authGroup.GET("/placements/:placement_id", placementHandler.GetPlacement)
	authGroup.PUT("/placements/:placement_id", placementHandler.UpdatePlacementContent)
	authGroup.DELETE("/placements/:placement_id", placementHandler.DeletePlacement)
	authGroup.POST("/placements/:placement_id/move", placementHandler.MovePlacement)
	authGroup.POST("/placements/bulk", placementHandler.BulkOperation)

	// クーポン関連エンドポイント
	authGroup.POST("/vouchers", voucherHandler.CreateVoucher)
	authGroup.GET("/vouchers", voucherHandler.ListVouchers)
	authGroup.GET("/vouchers/:voucher_id", voucherHandler.GetVoucher)
	authGroup.PUT("/vouchers/:voucher_id", voucherHandler.UpdateVoucher)
	authGroup.DELETE("/vouchers/:voucher_id", voucherHandler.DeleteVoucher)
	authGroup.POST("/vouchers/:voucher_id/publish", voucherHandler.PublishVoucher)
	authGroup.POST("/vouchers/:voucher_id/claim", voucherHandler.ClaimVoucher)
	authGroup.POST("/vouchers/:voucher_id/redeem", voucherHandler.RedeemVoucher)
	authGroup.GET("/vouchers/:voucher_id/can-transition", voucherHandler.CanTransitionVoucher)

	// 管理APIエンドポイント（APIキー認証）
	if cfg.AdminAPI.Enabled {
		adminGroup := api.Group("/admin", restmiddleware.APIKeyMiddleware(&cfg.AdminAPI, logger))
		adminGroup.POST("/vouchers/:voucher_id/expire", voucherHandler.ExpireVoucher)
		adminGroup.POST("/vouchers/:voucher_id/suspend", voucherHandler.SuspendVoucher)
		adminGroup.POST("/books/:book_id/ready-for-print", bookHandler.MarkReadyForPrint)
	}

	// ヘルスチェックエンドポイント（認証不要）
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}

// Start サーバーを起動
func (r *Router) Start(address string) error {
	return r.echo.Start(address)
}

// Shutdown サーバーをシャットダウン
func (r *Router) Shutdown() error {
	return r.echo.Close()
}
