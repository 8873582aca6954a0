package service

import (
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/TWRT/task-reminder/internal/client/mistral"
	"github.com/TWRT/task-reminder/internal/client/postmark"
	"github.com/TWRT/task-reminder/internal/repository"
)

type fakeCompleter struct {
	response *mistral.ChatResponse
	err      error
	requests []mistral.ChatRequest
}

func (f *fakeCompleter) Complete(request mistral.ChatRequest) (*mistral.ChatResponse, error) {
	f.requests = append(f.requests, request)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

type fakeSender struct {
	sent []postmark.Email
	err  error
}

func (f *fakeSender) Send(email postmark.Email) (*postmark.SendResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, email)
	return &postmark.SendResponse{MessageID: "fake-message-id"}, nil
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := repository.InitDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func toolCall(t *testing.T, name string, args map[string]any) mistral.ToolCall {
	t.Helper()

	raw, err := json.Marshal(args)
	if err != nil {
		t.Fatalf("marshal tool arguments: %v", err)
	}
	return mistral.ToolCall{
		ID:   "call-" + name,
		Type: "function",
		Function: mistral.FunctionCall{
			Name:      name,
			Arguments: raw,
		},
	}
}

func toolCallResponse(calls ...mistral.ToolCall) *mistral.ChatResponse {
	return &mistral.ChatResponse{
		Choices: []mistral.Choice{{
			Message:      mistral.ResponseMessage{Role: "assistant", ToolCalls: calls},
			FinishReason: "tool_calls",
		}},
	}
}

func plainResponse(content string) *mistral.ChatResponse {
	return &mistral.ChatResponse{
		Choices: []mistral.Choice{{
			Message:      mistral.ResponseMessage{Role: "assistant", Content: content},
			FinishReason: "stop",
		}},
	}
}
