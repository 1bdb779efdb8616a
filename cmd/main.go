package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/joho/godotenv"

	"github.com/DS9cl/Web/internal/chat"
	"github.com/DS9cl/Web/internal/config"
	"github.com/DS9cl/Web/internal/handlers"
	"github.com/DS9cl/Web/internal/logging"
	"github.com/DS9cl/Web/internal/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config failed", "err", err)
		os.Exit(1)
	}
	logging.Setup(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	st, err := store.OpenFile(cfg.DataPath)
	if err != nil {
		slog.Error("opening data file failed", "path", cfg.DataPath, "err", err)
		os.Exit(1)
	}

	manager := chat.NewManager(st)
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	app := fiber.New(fiber.Config{
		Views:                 html.New("./web/views", ".html"),
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(cors.New())

	rest := handlers.NewREST(st)
	app.Post("/login", rest.Login)
	app.Get("/servers", rest.ListServers)
	app.Post("/servers", rest.CreateServer)
	app.Get("/messages/:serverId/:channelId", rest.Messages)

	app.Use("/ws", handlers.UpgradeRequired)
	app.Get("/ws", websocket.New(handlers.Connect(manager)))

	app.Static("/static", "./web/static")
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Render("index", fiber.Map{"Title": "Web Chat"})
	})

	go func() {
		slog.Info("server running", "port", cfg.Port, "data", cfg.DataPath)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	cancel()
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		slog.Error("shutdown failed", "err", err)
	}
	_ = st.Close()
}
