package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	. "github.com/DrGermanius/shoutout/internal"
	"github.com/DrGermanius/shoutout/internal/order"
)

const refundRetryInterval = time.Minute

func main() {
	//decimals at json as numbers
	//https://github.com/shopspring/decimal/issues/21
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := NewConfig()
	if err != nil {
		log.Fatal(err)
	}
	z, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer z.Sync()
	sugaredLogger := z.Sugar()

	repository, err := NewRepository(cfg.DatabaseURI, sugaredLogger)
	if err != nil {
		sugaredLogger.Fatal(err)
	}

	var payments IPaymentClient
	if cfg.PaymentSystemAddress != "" {
		payments = NewPaymentClient(sugaredLogger, cfg.PaymentSystemAddress)
	} else {
		sugaredLogger.Warn("PAYMENT_SYSTEM_ADDRESS is not set, refunds will only be recorded")
	}

	service := NewService(repository, payments, cfg.JWTSecret, sugaredLogger, order.SystemClock{})
	handlers := NewHandlers(service, cfg.JWTSecret, sugaredLogger)

	ctx, cancel := context.WithCancel(context.Background())
	swept := NewRefundSweeper(service, refundRetryInterval, sugaredLogger).Start(ctx)

	app := fiber.New()
	app.Use(logger.New())
	handlers.Routes(app)

	go func() {
		if err := app.Listen(cfg.RunAddress); err != nil {
			sugaredLogger.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sugaredLogger.Info("Shutting down service...")

	cancel()
	<-swept

	if err := app.Shutdown(); err != nil {
		sugaredLogger.Errorf("Shutdown error: %s", err.Error())
	}
	if err := repository.Conn.Close(); err != nil {
		sugaredLogger.Errorf("Shutdown error: %s", err.Error())
	}
}
