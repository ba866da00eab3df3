package main

import (
	"context"
	"log/slog"
	"os"

	"foodorder/internal/auth"
	"foodorder/internal/config"
	"foodorder/internal/domain/model"
	"foodorder/internal/handler"
	"foodorder/internal/infra/db"
	infraRepo "foodorder/internal/infra/repository"
	"foodorder/internal/server"
	"foodorder/internal/usecase"
	"foodorder/internal/ws"

	"github.com/joho/godotenv"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	//.envは無くてもよい（本番は環境変数のみ）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		logger.Error("db connect failed", "error", err)
		os.Exit(1)
	}
	if err := gormDB.AutoMigrate(
		&model.Customer{},
		&model.Merchant{},
		&model.Food{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		logger.Error("migrate failed", "error", err)
		os.Exit(1)
	}

	//Repository（GORM実装）生成
	customerRepo := infraRepo.NewCustomerGormRepository(gormDB)
	merchantRepo := infraRepo.NewMerchantGormRepository(gormDB)
	foodRepo := infraRepo.NewFoodGormRepository(gormDB)
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//トークン発行・判定
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.MerchantJWTSecret, cfg.AdminJWTSecret, cfg.RefreshTokenSecret)
	classifier := auth.NewClassifier(cfg.JWTSecret, cfg.MerchantJWTSecret)

	//Usecase生成
	authUC := usecase.NewAuthUsecase(customerRepo, merchantRepo, issuer)
	merchantUC := usecase.NewMerchantUsecase(merchantRepo)
	foodUC := usecase.NewFoodUsecase(foodRepo)
	orderUC := usecase.NewOrderUsecase(txManager, orderRepo, customerRepo)

	//Hub起動（room状態は1ループが持つ）
	hub := ws.NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	gateway := ws.NewOrderGateway(hub, classifier, orderUC, cfg.FEURL, logger)

	//Handler生成
	h := server.Handlers{
		Auth:     handler.NewAuthHandler(authUC),
		Merchant: handler.NewMerchantHandler(merchantUC),
		Food:     handler.NewFoodHandler(foodUC),
		Order:    handler.NewOrderHandler(orderUC),
		Gateway:  gateway,
	}

	e := server.New(cfg, h)

	addr := ":" + cfg.Port
	logger.Info("server starting", "addr", addr)
	if err := server.Start(e, addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
