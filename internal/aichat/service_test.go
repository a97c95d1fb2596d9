package aichat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/fechouapp/fechou-backend/pkg/db/models"
	"github.com/fechouapp/fechou-backend/pkg/enums"
	pkgerrors "github.com/fechouapp/fechou-backend/pkg/errors"
	"github.com/fechouapp/fechou-backend/pkg/openai"
)

type stubRepo struct {
	stored  []*models.ChatMessage
	history []models.ChatMessage
}

func (s *stubRepo) Create(ctx context.Context, message *models.ChatMessage) error {
	s.stored = append(s.stored, message)
	return nil
}

func (s *stubRepo) ListRecent(ctx context.Context, accountID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	return s.history, nil
}

type stubGate struct {
	checkErr error
	records  int
}

func (s *stubGate) CheckConsume(ctx context.Context, accountID uuid.UUID, kind enums.ResourceKind) error {
	return s.checkErr
}

func (s *stubGate) RecordConsumption(ctx context.Context, accountID uuid.UUID, kind enums.ResourceKind) error {
	s.records++
	return nil
}

type stubResponder struct {
	reply    string
	err      error
	captured []openai.Message
}

func (s *stubResponder) Complete(ctx context.Context, messages []openai.Message) (string, error) {
	s.captured = messages
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newTestService(t *testing.T, repo *stubRepo, gate *stubGate, responder *stubResponder) *Service {
	t.Helper()

	svc, err := NewService(ServiceParams{Repo: repo, Responder: responder, Entitlements: gate})
	if err != nil {
		t.Fatalf("unexpected error building service: %v", err)
	}
	return svc
}

func TestSendBlockedByQuota(t *testing.T) {
	repo := &stubRepo{}
	gate := &stubGate{checkErr: pkgerrors.New(pkgerrors.CodeQuotaExceeded, "monthly ai_message limit reached")}
	svc := newTestService(t, repo, gate, &stubResponder{})

	_, err := svc.Send(context.Background(), uuid.New(), "ola")
	if !pkgerrors.IsCode(err, pkgerrors.CodeQuotaExceeded) {
		t.Fatalf("expected quota exceeded, got %v", err)
	}
	if len(repo.stored) != 0 {
		t.Fatal("expected no message stored when quota blocks")
	}
}

func TestSendPersistsBothTurns(t *testing.T) {
	repo := &stubRepo{}
	gate := &stubGate{}
	responder := &stubResponder{reply: "Claro, posso ajudar com a proposta."}
	svc := newTestService(t, repo, gate, responder)

	result, err := svc.Send(context.Background(), uuid.New(), "Me ajude com uma proposta")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.stored) != 2 {
		t.Fatalf("expected user and assistant turns stored, got %d", len(repo.stored))
	}
	if repo.stored[0].Role != enums.ChatRoleUser || repo.stored[1].Role != enums.ChatRoleAssistant {
		t.Fatal("expected user turn then assistant turn")
	}
	if gate.records != 1 {
		t.Fatalf("expected one usage record, got %d", gate.records)
	}
	if result.Reply.Content != responder.reply {
		t.Fatalf("unexpected reply content %q", result.Reply.Content)
	}
}

func TestSendPromptIncludesSystemAndHistory(t *testing.T) {
	repo := &stubRepo{history: []models.ChatMessage{
		{Role: enums.ChatRoleUser, Content: "primeira pergunta"},
		{Role: enums.ChatRoleAssistant, Content: "primeira resposta"},
	}}
	responder := &stubResponder{reply: "ok"}
	svc := newTestService(t, repo, &stubGate{}, responder)

	if _, err := svc.Send(context.Background(), uuid.New(), "segunda pergunta"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(responder.captured) != 4 {
		t.Fatalf("expected system + 2 history + new message, got %d", len(responder.captured))
	}
	if responder.captured[0].Role != "system" {
		t.Fatal("expected system prompt first")
	}
	if responder.captured[3].Content != "segunda pergunta" {
		t.Fatal("expected new message last")
	}
}

func TestSendResponderFailureKeepsUserTurn(t *testing.T) {
	repo := &stubRepo{}
	gate := &stubGate{}
	responder := &stubResponder{err: errors.New("upstream timeout")}
	svc := newTestService(t, repo, gate, responder)

	_, err := svc.Send(context.Background(), uuid.New(), "ola")
	if err == nil {
		t.Fatal("expected responder error to surface")
	}
	// The user turn and its consumption stay recorded even when the reply fails.
	if len(repo.stored) != 1 {
		t.Fatalf("expected only the user turn stored, got %d", len(repo.stored))
	}
	if gate.records != 1 {
		t.Fatalf("expected usage recorded for user turn, got %d", gate.records)
	}
}

func TestSendValidation(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubGate{}, &stubResponder{})

	if _, err := svc.Send(context.Background(), uuid.New(), "   "); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for blank content, got %v", err)
	}

	long := strings.Repeat("a", maxMessageLength+1)
	if _, err := svc.Send(context.Background(), uuid.New(), long); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for oversized content, got %v", err)
	}
}

func TestHistoryRequiresAccount(t *testing.T) {
	svc := newTestService(t, &stubRepo{}, &stubGate{}, &stubResponder{})

	if _, err := svc.History(context.Background(), uuid.Nil); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
