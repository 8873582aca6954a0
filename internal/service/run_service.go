package service

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/TWRT/task-reminder/internal/config"
	"github.com/TWRT/task-reminder/internal/models"
	"github.com/TWRT/task-reminder/internal/repository"
)

// How much conversation history the reconciler sees.
const historyWindow = 10

// devSampleReply exercises the full pipeline in development mode with a
// predictable input.
const devSampleReply = "Finished the quarterly report this morning. The tax declaration " +
	"is going slowly, I'll need until Friday. Also, I should book the dentist appointment " +
	"sometime next week."

type RunService struct {
	cfg        *config.Config
	db         *sql.DB
	taskRepo   *repository.TaskRepository
	msgRepo    *repository.MessageRepository
	reconciler *ReconcileService
	notifier   *NotifyService
}

func NewRunService(
	cfg *config.Config,
	db *sql.DB,
	taskRepo *repository.TaskRepository,
	msgRepo *repository.MessageRepository,
	reconciler *ReconcileService,
	notifier *NotifyService,
) *RunService {
	return &RunService{
		cfg:        cfg,
		db:         db,
		taskRepo:   taskRepo,
		msgRepo:    msgRepo,
		reconciler: reconciler,
		notifier:   notifier,
	}
}

// sampleTasks is the fixed development seed. It is deliberately static:
// a dev reset must yield the same store every time.
func sampleTasks() []models.Task {
	report := models.NewTask("Write the quarterly report", nil)
	report.Status = models.StatusRunning
	report.Comment = "Draft is half done"

	taxes := models.NewTask("File the tax declaration", nil)

	dentist := models.NewTask("Book a dentist appointment", nil)
	dentist.ScheduledForComment = "sometime this month"

	return []models.Task{report, taxes, dentist}
}

// Run executes one reminder cycle: reconcile the reply (if any) into the
// task list, then send the reminder. The first error aborts the run;
// whatever was persisted before the failure stays.
func (s *RunService) Run(reply string) error {
	runID := uuid.NewString()

	if s.cfg.Mode == config.ModeDev {
		log.Println("Development mode: resetting store and seeding sample data")
		if err := repository.Reset(s.db, s.cfg.Mode); err != nil {
			return fmt.Errorf("reset store: %w", err)
		}
		for _, task := range sampleTasks() {
			if _, err := s.taskRepo.Create(&task); err != nil {
				return fmt.Errorf("seed sample task: %w", err)
			}
		}
		if reply == "" {
			reply = devSampleReply
		}
	}

	if reply != "" {
		if err := s.processReply(reply, runID); err != nil {
			return err
		}
	}

	open, err := s.taskRepo.ListOpen()
	if err != nil {
		return fmt.Errorf("list open tasks: %w", err)
	}

	body, err := s.notifier.SendReminder(open)
	if err != nil {
		return err
	}

	outbound := models.NewMessage(models.DirectionOutbound, body, runID)
	if _, err := s.msgRepo.Append(&outbound); err != nil {
		return fmt.Errorf("log reminder: %w", err)
	}

	log.Printf("Reminder sent, %d open task(s)", len(open))
	return nil
}

func (s *RunService) processReply(reply, runID string) error {
	// History is captured before the reply is appended so the prompt
	// doesn't see it twice. The append happens before reconciliation:
	// if the model's response cannot be parsed, the reply is still in
	// the log for manual inspection.
	history, err := s.msgRepo.Recent(historyWindow)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	inbound := models.NewMessage(models.DirectionInbound, reply, runID)
	messageID, err := s.msgRepo.Append(&inbound)
	if err != nil {
		return fmt.Errorf("log reply: %w", err)
	}

	tasks, err := s.taskRepo.ListOpen()
	if err != nil {
		return fmt.Errorf("list open tasks: %w", err)
	}

	mutations, err := s.reconciler.Reconcile(tasks, history, reply)
	if err != nil {
		return err
	}

	if err := s.reconciler.Apply(mutations, &messageID); err != nil {
		return fmt.Errorf("apply updates: %w", err)
	}

	log.Printf("Reconciled reply into %d update(s)", len(mutations))
	return nil
}
