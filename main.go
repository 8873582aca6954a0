package main

import (
	"fmt"
	"log"

	"github.com/TWRT/task-reminder/internal/client/mistral"
	"github.com/TWRT/task-reminder/internal/client/postmark"
	"github.com/TWRT/task-reminder/internal/config"
	"github.com/TWRT/task-reminder/internal/repository"
	"github.com/TWRT/task-reminder/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Configuration error: ", err)
	}

	db, err := repository.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer db.Close()

	fmt.Printf("✅ Database ready at %s (mode: %s)\n", cfg.DBPath, cfg.Mode)

	mistralClient := mistral.NewMistralClient(cfg.MistralAPIKey)
	postmarkClient := postmark.NewPostmarkClient(cfg.PostmarkServerToken)

	taskRepo := repository.NewTaskRepository(db)
	msgRepo := repository.NewMessageRepository(db)

	reconciler := service.NewReconcileService(mistralClient, cfg.MistralModel, taskRepo)
	notifier := service.NewNotifyService(postmarkClient, cfg.SenderMail, cfg.ReceiverMail)
	runner := service.NewRunService(cfg, db, taskRepo, msgRepo, reconciler, notifier)

	// Inbound replies have no transport yet; a future webhook or poller
	// will hand the reply text to Run. Development mode substitutes a
	// fixed sample reply on its own.
	if err := runner.Run(""); err != nil {
		log.Fatal("Run failed: ", err)
	}

	fmt.Println("✅ Run completed")
}
