package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/telegpt/telegram-gpt-bridge/internal/biz/usecase"
	"github.com/telegpt/telegram-gpt-bridge/internal/conf"
	"github.com/telegpt/telegram-gpt-bridge/internal/data"
	"github.com/telegpt/telegram-gpt-bridge/internal/server"
	"github.com/telegpt/telegram-gpt-bridge/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	// Data layer
	allowListRepo, err := data.NewFileAllowListRepo(cfg.Access.AllowListPath)
	if err != nil {
		log.Fatalf("Failed to open allow list: %v", err)
	}
	staging, err := data.NewStagingArea(cfg.StagingDir)
	if err != nil {
		log.Fatalf("Failed to create staging area: %v", err)
	}
	aiRepo := data.NewOpenAIRepo(cfg.OpenAI.APIKey, cfg.OpenAI.ChatModel)

	// Usecases
	allowList, err := usecase.NewAllowListUsecase(allowListRepo)
	if err != nil {
		log.Fatalf("Failed to load allow list: %v", err)
	}
	policy := usecase.NewAccessPolicy(cfg.Access.OwnerID, allowList)
	store := usecase.NewConversationStore(cfg.Messages.Persona, cfg.IdleTimeout)
	relay := usecase.NewStreamRelay(usecase.DefaultEditThreshold, logger)
	transcribe := usecase.NewTranscribeUsecase(staging, data.NewFFmpegTranscoder(), aiRepo, logger)
	chatSvc := service.NewChatService(store, relay, aiRepo, logger)

	// Telegram client
	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		log.Fatalf("Failed to create Telegram bot: %v", err)
	}
	bot.Debug = cfg.Debug

	srv := server.NewTelegramServer(bot, policy, allowList, store, chatSvc, transcribe, aiRepo, cfg.Messages, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		srv.Stop()
	}()

	fmt.Println("Bot has started.")
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// newLogger builds the process logger, writing to LOG_FILE_PATH when set
func newLogger(cfg *conf.Config) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	out := os.Stderr
	closeLog := func() {}
	if cfg.LogFilePath != "" {
		f, err := os.OpenFile(cfg.LogFilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeLog = func() { f.Close() }
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, closeLog, nil
}
