package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/TWRT/task-reminder/internal/config"
	"github.com/TWRT/task-reminder/internal/models"
	"github.com/TWRT/task-reminder/internal/repository"
)

type runFixture struct {
	svc      *RunService
	taskRepo *repository.TaskRepository
	msgRepo  *repository.MessageRepository
}

func newRunFixture(t *testing.T, mode config.Mode, llm *fakeCompleter, sender *fakeSender) runFixture {
	t.Helper()

	cfg := &config.Config{
		ReceiverMail: "user@example.com",
		SenderMail:   "assistant@example.com",
		MistralModel: "mistral-small-latest",
		Mode:         mode,
	}

	db := newTestDB(t)
	taskRepo := repository.NewTaskRepository(db)
	msgRepo := repository.NewMessageRepository(db)
	reconciler := NewReconcileService(llm, cfg.MistralModel, taskRepo)
	notifier := NewNotifyService(sender, cfg.SenderMail, cfg.ReceiverMail)

	return runFixture{
		svc:      NewRunService(cfg, db, taskRepo, msgRepo, reconciler, notifier),
		taskRepo: taskRepo,
		msgRepo:  msgRepo,
	}
}

func TestDevRunSeedsDeterministically(t *testing.T) {
	llm := &fakeCompleter{response: plainResponse("nothing to do")}
	sender := &fakeSender{}
	f := newRunFixture(t, config.ModeDev, llm, sender)

	var firstRun []string
	for run := 0; run < 2; run++ {
		if err := f.svc.Run(""); err != nil {
			t.Fatalf("Run %d failed: %v", run, err)
		}

		tasks, err := f.taskRepo.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}

		var descriptions []string
		for _, task := range tasks {
			descriptions = append(descriptions, task.Description)
		}

		if run == 0 {
			firstRun = descriptions
			continue
		}
		if len(descriptions) != len(firstRun) {
			t.Fatalf("seed size changed between runs: %d vs %d", len(firstRun), len(descriptions))
		}
		for i := range descriptions {
			if descriptions[i] != firstRun[i] {
				t.Errorf("seed differs at %d: %q vs %q", i, firstRun[i], descriptions[i])
			}
		}
	}
}

func TestDevRunProcessesSampleReply(t *testing.T) {
	llm := &fakeCompleter{response: plainResponse("nothing to do")}
	sender := &fakeSender{}
	f := newRunFixture(t, config.ModeDev, llm, sender)

	if err := f.svc.Run(""); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(llm.requests) != 1 {
		t.Fatalf("expected the sample reply to reach the model, got %d call(s)", len(llm.requests))
	}
	if !strings.Contains(llm.requests[0].Messages[0].Content, "quarterly report") {
		t.Error("prompt missing the sample reply")
	}
}

func TestNormalRunReconcilesAndNotifies(t *testing.T) {
	llm := &fakeCompleter{response: toolCallResponse(
		toolCall(t, "update_task", map[string]any{"task_id": 1, "status": "completed"}),
		toolCall(t, "insert_task", map[string]any{"description": "Prepare the budget", "status": "pending"}),
	)}
	sender := &fakeSender{}
	f := newRunFixture(t, config.ModeNormal, llm, sender)

	report := models.NewTask("Write the report", nil)
	report.Status = models.StatusRunning
	if _, err := f.taskRepo.Create(&report); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := f.svc.Run("Finished the report, will start the budget tomorrow"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got, err := f.taskRepo.Get(report.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != models.StatusCompleted {
		t.Errorf("expected report marked completed, got %s", got.Status)
	}

	open, err := f.taskRepo.ListOpen()
	if err != nil {
		t.Fatalf("ListOpen failed: %v", err)
	}
	if len(open) != 1 || open[0].Description != "Prepare the budget" {
		t.Errorf("unexpected open tasks after run: %+v", open)
	}
	if open[0].FromMessage == nil {
		t.Error("new task missing its source message reference")
	}

	messages, err := f.msgRepo.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected inbound + outbound messages, got %d", len(messages))
	}
	if messages[0].Direction != models.DirectionInbound || messages[1].Direction != models.DirectionOutbound {
		t.Errorf("unexpected directions: %s then %s", messages[0].Direction, messages[1].Direction)
	}
	if messages[0].RunID == "" || messages[0].RunID != messages[1].RunID {
		t.Errorf("messages of one run should share a run id: %q vs %q", messages[0].RunID, messages[1].RunID)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 reminder, got %d", len(sender.sent))
	}
	if !strings.Contains(sender.sent[0].TextBody, "Prepare the budget") {
		t.Error("reminder missing the freshly added task")
	}
}

func TestNormalRunWithoutReplySkipsReconciliation(t *testing.T) {
	llm := &fakeCompleter{}
	sender := &fakeSender{}
	f := newRunFixture(t, config.ModeNormal, llm, sender)

	if err := f.svc.Run(""); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(llm.requests) != 0 {
		t.Errorf("expected no model call without a reply, got %d", len(llm.requests))
	}
	if len(sender.sent) != 1 {
		t.Errorf("expected the daily reminder anyway, got %d email(s)", len(sender.sent))
	}

	messages, err := f.msgRepo.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(messages) != 1 || messages[0].Direction != models.DirectionOutbound {
		t.Errorf("expected a single outbound message, got %+v", messages)
	}
}

func TestFailedSendKeepsReconciledState(t *testing.T) {
	llm := &fakeCompleter{response: toolCallResponse(
		toolCall(t, "update_task", map[string]any{"task_id": 1, "status": "completed"}),
	)}
	sender := &fakeSender{err: errors.New("invalid server token")}
	f := newRunFixture(t, config.ModeNormal, llm, sender)

	report := models.NewTask("Write the report", nil)
	if _, err := f.taskRepo.Create(&report); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := f.svc.Run("Finished the report"); err == nil {
		t.Fatal("expected the run to fail on delivery")
	}

	// The reconciliation that happened before the failing send stays.
	got, err := f.taskRepo.Get(report.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != models.StatusCompleted {
		t.Errorf("expected completed status to persist, got %s", got.Status)
	}

	messages, err := f.msgRepo.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(messages) != 1 || messages[0].Direction != models.DirectionInbound {
		t.Errorf("expected only the inbound reply in the log, got %+v", messages)
	}
}
