package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/fechouapp/fechou-backend/api/middleware"
	"github.com/fechouapp/fechou-backend/api/responses"
	"github.com/fechouapp/fechou-backend/api/validators"
	"github.com/fechouapp/fechou-backend/internal/aichat"
	pkgerrors "github.com/fechouapp/fechou-backend/pkg/errors"
	"github.com/fechouapp/fechou-backend/pkg/logger"
)

// ChatService describes the assistant methods used by the HTTP controllers.
type ChatService interface {
	History(ctx context.Context, accountID uuid.UUID) ([]aichat.MessageDTO, error)
	Send(ctx context.Context, accountID uuid.UUID, content string) (*aichat.SendResult, error)
}

type sendChatMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
}

func ChatHistory(svc ChatService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		messages, err := svc.History(ctx, middleware.AccountIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"messages": messages})
	}
}

func ChatSend(svc ChatService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "chat service unavailable"))
			return
		}

		var payload sendChatMessageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.Send(ctx, middleware.AccountIDFromContext(ctx), payload.Content)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
