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

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mvribeiro/suplemarket/internal/config"
	"github.com/mvribeiro/suplemarket/internal/es"
	"github.com/mvribeiro/suplemarket/internal/events"
	"github.com/mvribeiro/suplemarket/internal/httpserver"
	"github.com/mvribeiro/suplemarket/internal/logging"
	"github.com/mvribeiro/suplemarket/internal/mailer"
	"github.com/mvribeiro/suplemarket/internal/middleware/loggingmw"
	"github.com/mvribeiro/suplemarket/internal/repo"
	"github.com/mvribeiro/suplemarket/internal/service/cart"
	"github.com/mvribeiro/suplemarket/internal/service/inventory"
	"github.com/mvribeiro/suplemarket/internal/service/order"
	"github.com/mvribeiro/suplemarket/internal/service/sales"
	"github.com/mvribeiro/suplemarket/internal/service/search"
	"github.com/mvribeiro/suplemarket/internal/service/store"
	"github.com/mvribeiro/suplemarket/internal/service/token"
	"github.com/mvribeiro/suplemarket/internal/userinfo"
)

const productIndex = "products"

func main() {
	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}

	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(os.Getenv("LOG_LEVEL"))

	jwtSecret := []byte(configuration.JWT_SECRET)
	refreshSecret := []byte(configuration.REFRESH_SECRET)

	var prod *events.Producer
	if configuration.KAFKA_ADDRESS != "" {
		prod = events.NewProducer(configuration.KAFKA_ADDRESS)
	}

	indexer := &search.Indexer{}
	storeHandler := &httpserver.StoreHandler{}
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			log.Fatal(err)
		}
		indexer = &search.Indexer{ES: esClient, Index: productIndex}
		storeHandler.ES = esClient
		storeHandler.Index = productIndex
	}

	var mail mailer.Sender = mailer.LogSender{}
	if configuration.SMTP_HOST != "" {
		mail = &mailer.SMTPSender{
			Host:     configuration.SMTP_HOST,
			Port:     configuration.SMTP_PORT,
			Username: configuration.SMTP_USER,
			Password: configuration.SMTP_PASSWORD,
			From:     configuration.SMTP_FROM,
		}
	}

	r := repo.New(db)

	invSvc := &inventory.Service{Repo: r}
	storeSvc := &store.Service{Repo: r}
	salesSvc := &sales.Service{Repo: r}
	orderSvc := order.New(userinfo.New(r), mail)
	orderSvc.Inbox = configuration.ORDER_INBOX
	sessions := cart.NewSessions()

	storeHandler.Store = storeSvc

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	cartHandler := &httpserver.CartHandler{Sessions: sessions, Store: storeSvc}

	deps := httpserver.Deps{
		DB:             db,
		AuthHandler:    &httpserver.AuthHandler{Repo: r, JWTSecret: jwtSecret, RefreshSecret: refreshSecret, Producer: prod},
		ProductHandler: &httpserver.ProductHandler{Inv: invSvc, Repo: r, Producer: prod, Indexer: indexer},
		ReportHandler:  &httpserver.ReportHandler{Inv: invSvc, Sales: salesSvc},
		SalesHandler:   &httpserver.SalesHandler{Svc: salesSvc, Producer: prod},
		StoreHandler:   storeHandler,
		CartHandler:    cartHandler,
		OrderHandler:   &httpserver.OrderHandler{Sessions: sessions, Orders: orderSvc, Producer: prod},
		TokenService:   &token.TokenService{DB: db, JWTSecret: jwtSecret, RefreshSecret: refreshSecret},
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":8080",
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if prod != nil {
		if err := prod.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
