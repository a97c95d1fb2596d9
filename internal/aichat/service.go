package aichat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fechouapp/fechou-backend/pkg/db/models"
	"github.com/fechouapp/fechou-backend/pkg/enums"
	pkgerrors "github.com/fechouapp/fechou-backend/pkg/errors"
	"github.com/fechouapp/fechou-backend/pkg/logger"
	"github.com/fechouapp/fechou-backend/pkg/openai"
)

const (
	historyWindow    = 20
	maxMessageLength = 4000

	systemPrompt = "Voce e o assistente do Fechou. Ajude profissionais autonomos a " +
		"redigir propostas comerciais e contratos de prestacao de servico claros e " +
		"profissionais, em portugues do Brasil."
)

type entitlementGate interface {
	CheckConsume(ctx context.Context, accountID uuid.UUID, kind enums.ResourceKind) error
	RecordConsumption(ctx context.Context, accountID uuid.UUID, kind enums.ResourceKind) error
}

// Responder produces the assistant reply for a conversation.
type Responder interface {
	Complete(ctx context.Context, messages []openai.Message) (string, error)
}

// MessageDTO is one chat turn returned to clients.
type MessageDTO struct {
	ID        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SendResult carries the persisted user message and the assistant reply.
type SendResult struct {
	Message *MessageDTO `json:"message"`
	Reply   *MessageDTO `json:"reply"`
}

// ServiceParams groups dependencies for the assistant service.
type ServiceParams struct {
	Repo         Repository
	Responder    Responder
	Entitlements entitlementGate
	Logger       *logger.Logger
}

// Service runs the plan-gated assistant conversation.
type Service struct {
	repo         Repository
	responder    Responder
	entitlements entitlementGate
	logg         *logger.Logger
}

// NewService constructs the assistant service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("chat repository required")
	}
	if params.Responder == nil {
		return nil, fmt.Errorf("responder required")
	}
	if params.Entitlements == nil {
		return nil, fmt.Errorf("entitlement service required")
	}
	return &Service{
		repo:         params.Repo,
		responder:    params.Responder,
		entitlements: params.Entitlements,
		logg:         params.Logger,
	}, nil
}

// History returns the recent conversation in chronological order.
func (s *Service) History(ctx context.Context, accountID uuid.UUID) ([]MessageDTO, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id is required")
	}
	messages, err := s.repo.ListRecent(ctx, accountID, historyWindow)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list chat messages")
	}

	dtos := make([]MessageDTO, 0, len(messages))
	for i := range messages {
		dtos = append(dtos, newMessageDTO(&messages[i]))
	}
	return dtos, nil
}

// Send gates the message on the plan, persists the user turn, asks the
// responder for a reply and persists it. Quota counts user messages only, and
// the counter is bumped after the user turn is stored.
func (s *Service) Send(ctx context.Context, accountID uuid.UUID, content string) (*SendResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message content is required")
	}
	if len(content) > maxMessageLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("message exceeds %d characters", maxMessageLength))
	}
	if err := s.entitlements.CheckConsume(ctx, accountID, enums.ResourceAIMessage); err != nil {
		return nil, err
	}

	history, err := s.repo.ListRecent(ctx, accountID, historyWindow)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list chat messages")
	}

	userMessage := &models.ChatMessage{
		ID:        uuid.New(),
		AccountID: accountID,
		Role:      enums.ChatRoleUser,
		Content:   content,
	}
	if err := s.repo.Create(ctx, userMessage); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert chat message")
	}

	if err := s.entitlements.RecordConsumption(ctx, accountID, enums.ResourceAIMessage); err != nil && s.logg != nil {
		logCtx := s.logg.WithField(ctx, "account_id", accountID.String())
		s.logg.Error(logCtx, "chat message stored but usage counter not incremented", err)
	}

	replyText, err := s.responder.Complete(ctx, buildPrompt(history, content))
	if err != nil {
		return nil, err
	}

	replyMessage := &models.ChatMessage{
		ID:        uuid.New(),
		AccountID: accountID,
		Role:      enums.ChatRoleAssistant,
		Content:   replyText,
	}
	if err := s.repo.Create(ctx, replyMessage); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert assistant reply")
	}

	userDTO := newMessageDTO(userMessage)
	replyDTO := newMessageDTO(replyMessage)
	return &SendResult{Message: &userDTO, Reply: &replyDTO}, nil
}

func buildPrompt(history []models.ChatMessage, content string) []openai.Message {
	messages := make([]openai.Message, 0, len(history)+2)
	messages = append(messages, openai.Message{Role: "system", Content: systemPrompt})
	for _, m := range history {
		messages = append(messages, openai.Message{Role: m.Role.String(), Content: m.Content})
	}
	messages = append(messages, openai.Message{Role: enums.ChatRoleUser.String(), Content: content})
	return messages
}

func newMessageDTO(message *models.ChatMessage) MessageDTO {
	return MessageDTO{
		ID:        message.ID,
		Role:      message.Role.String(),
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
	}
}
