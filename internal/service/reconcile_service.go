package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/TWRT/task-reminder/internal/client"
	"github.com/TWRT/task-reminder/internal/client/mistral"
	"github.com/TWRT/task-reminder/internal/models"
	"github.com/TWRT/task-reminder/internal/repository"
)

const dateFormat = "2006-01-02"

type ReconcileService struct {
	llm      client.ChatCompleter
	model    string
	taskRepo *repository.TaskRepository
}

func NewReconcileService(llm client.ChatCompleter, model string, taskRepo *repository.TaskRepository) *ReconcileService {
	return &ReconcileService{
		llm:      llm,
		model:    model,
		taskRepo: taskRepo,
	}
}

// Reconcile asks the model to merge the user's reply into the current
// task list. It returns the extracted mutations without applying them;
// an empty slice means the reply contained nothing actionable. A
// response that cannot be reduced to valid mutations is an error, never
// silently dropped.
func (s *ReconcileService) Reconcile(tasks []models.Task, history []models.Message, reply string) ([]models.Mutation, error) {
	if strings.TrimSpace(reply) == "" {
		return nil, nil
	}

	parallel := true
	request := mistral.ChatRequest{
		Model: s.model,
		Messages: []mistral.Message{
			{Role: "user", Content: buildPrompt(tasks, history, reply)},
		},
		Tools:             reconcileTools(),
		ToolChoice:        "auto",
		ParallelToolCalls: &parallel,
	}

	response, err := s.llm.Complete(request)
	if err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	choice := response.Choices[0]
	if choice.FinishReason != "tool_calls" {
		// The model decided the reply needs no changes.
		return []models.Mutation{}, nil
	}

	mutations := make([]models.Mutation, 0, len(choice.Message.ToolCalls))
	for _, call := range choice.Message.ToolCalls {
		mutation, err := parseToolCall(call)
		if err != nil {
			return nil, fmt.Errorf("reconcile: %w", err)
		}
		mutations = append(mutations, mutation)
	}

	return mutations, nil
}

// Apply writes mutations to the task store in one transaction.
func (s *ReconcileService) Apply(mutations []models.Mutation, fromMessage *int64) error {
	if len(mutations) == 0 {
		return nil
	}
	return s.taskRepo.ApplyUpdates(mutations, fromMessage)
}

func buildPrompt(tasks []models.Task, history []models.Message, reply string) string {
	var b strings.Builder

	b.WriteString("You are a personal task assistant. The user replied to their daily ")
	b.WriteString("task reminder. Merge the reply into the task list below: mark tasks ")
	b.WriteString("the user finished or gave up on with update_task, add tasks the user ")
	b.WriteString("mentions for the first time with insert_task, and reschedule tasks ")
	b.WriteString("the user postponed with update_task. Refer to tasks strictly by the ")
	b.WriteString("ids shown. If the reply contains nothing actionable, call no tools.\n")
	fmt.Fprintf(&b, "Today's date is %s.\n", time.Now().Format(dateFormat))

	b.WriteString("\nCurrent tasks:\n")
	if len(tasks) == 0 {
		b.WriteString("(none)\n")
	}
	for _, t := range tasks {
		b.WriteString(t.String())
		b.WriteString("\n")
	}

	if len(history) > 0 {
		b.WriteString("\nRecent conversation:\n")
		for _, m := range history {
			b.WriteString(m.String())
			b.WriteString("\n\n")
		}
	}

	b.WriteString("\nThe user's reply:\n")
	b.WriteString(reply)

	return b.String()
}

func reconcileTools() []mistral.Tool {
	statusProperty := map[string]any{
		"type": "string",
		"enum": []string{"pending", "running", "completed", "failed"},
		"description": "The status of the task. Only use the ones listed. Don't use " +
			"percentages or any other measure. If you need to supply additional " +
			"information, use the comment field.",
	}
	commentProperty := map[string]any{
		"type": "string",
		"description": "An optional comment about how the task seems to be going and " +
			"anything else that did not fit in the other fields. It will be passed " +
			"back to you the next time.",
	}
	scheduledForProperty := map[string]any{
		"type":        "string",
		"format":      "date",
		"description": "The date when the task is scheduled to be completed.",
	}
	scheduledForCommentProperty := map[string]any{
		"type": "string",
		"description": "An optional comment about the scheduled date. Use this when " +
			"there is no specific date, the user talks about a range, or something " +
			"else that is important.",
	}

	return []mistral.Tool{
		{
			Type: "function",
			Function: mistral.Function{
				Name:        "insert_task",
				Description: "Insert a new task into the task list",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"description": map[string]any{
							"type":        "string",
							"description": "A concise description of the task.",
						},
						"status":                statusProperty,
						"comment":               commentProperty,
						"scheduled_for":         scheduledForProperty,
						"scheduled_for_comment": scheduledForCommentProperty,
					},
					"required": []string{"description", "status"},
				},
			},
		},
		{
			Type: "function",
			Function: mistral.Function{
				Name:        "update_task",
				Description: "Update an existing task, referenced by its id",
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"task_id": map[string]any{
							"type":        "integer",
							"description": "The id of the task to update, as shown in the task list.",
						},
						"status":                statusProperty,
						"comment":               commentProperty,
						"scheduled_for":         scheduledForProperty,
						"scheduled_for_comment": scheduledForCommentProperty,
					},
					"required": []string{"task_id", "status"},
				},
			},
		},
	}
}

type insertTaskArgs struct {
	Description         string `json:"description"`
	Status              string `json:"status"`
	Comment             string `json:"comment"`
	ScheduledFor        string `json:"scheduled_for"`
	ScheduledForComment string `json:"scheduled_for_comment"`
}

type updateTaskArgs struct {
	TaskID              int64  `json:"task_id"`
	Status              string `json:"status"`
	Comment             string `json:"comment"`
	ScheduledFor        string `json:"scheduled_for"`
	ScheduledForComment string `json:"scheduled_for_comment"`
}

func parseToolCall(call mistral.ToolCall) (models.Mutation, error) {
	switch call.Function.Name {
	case "insert_task":
		var args insertTaskArgs
		if err := decodeArguments(call.Function.Arguments, &args); err != nil {
			return models.Mutation{}, fmt.Errorf("parse insert_task arguments: %w", err)
		}
		scheduledFor, err := parseOptionalDate(args.ScheduledFor)
		if err != nil {
			return models.Mutation{}, fmt.Errorf("parse insert_task scheduled_for: %w", err)
		}
		mutation := models.Mutation{
			Kind:                models.MutationAdd,
			Description:         args.Description,
			Status:              models.TaskStatus(args.Status),
			Comment:             args.Comment,
			ScheduledFor:        scheduledFor,
			ScheduledForComment: args.ScheduledForComment,
		}
		return mutation, mutation.Validate()

	case "update_task":
		var args updateTaskArgs
		if err := decodeArguments(call.Function.Arguments, &args); err != nil {
			return models.Mutation{}, fmt.Errorf("parse update_task arguments: %w", err)
		}
		scheduledFor, err := parseOptionalDate(args.ScheduledFor)
		if err != nil {
			return models.Mutation{}, fmt.Errorf("parse update_task scheduled_for: %w", err)
		}
		mutation := models.Mutation{
			Kind:                models.MutationUpdate,
			TaskID:              args.TaskID,
			Status:              models.TaskStatus(args.Status),
			Comment:             args.Comment,
			ScheduledFor:        scheduledFor,
			ScheduledForComment: args.ScheduledForComment,
		}
		return mutation, mutation.Validate()
	}

	return models.Mutation{}, fmt.Errorf("unknown tool call: %s", call.Function.Name)
}

// decodeArguments handles tool-call arguments arriving either as a JSON
// object or as a JSON-encoded string containing one.
func decodeArguments(raw json.RawMessage, v any) error {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return json.Unmarshal([]byte(s), v)
	}
	return json.Unmarshal(raw, v)
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
