package client

import (
	"github.com/TWRT/task-reminder/internal/client/mistral"
	"github.com/TWRT/task-reminder/internal/client/postmark"
)

type ChatCompleter interface {
	Complete(request mistral.ChatRequest) (*mistral.ChatResponse, error)
}

type MailSender interface {
	Send(email postmark.Email) (*postmark.SendResponse, error)
}
