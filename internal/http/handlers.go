package http

import (
	"context"
	"errors"
	"net/http"

	"assistente/internal/assistant"
	"assistente/internal/ledger"
	applog "assistente/internal/log"
)

const (
	emptyMessageText   = "❌ Mensagem vazia"
	invalidRequestText = "❌ Requisição inválida"
	slowDownText       = "⏳ Muitas mensagens em sequência. Aguarde um minuto e tente novamente."
)

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	msg, err := ParseWebhookMessage(w, r)
	if err != nil {
		logger.WarnContext(ctx, "Invalid webhook payload", applog.FieldError, err)
		TextError(http.StatusBadRequest, invalidRequestText).Write(w)
		return
	}

	logger.InfoContext(ctx, "Webhook received",
		applog.FieldUser, msg.UserID,
		applog.FieldMessageSID, msg.MessageSID,
		applog.FieldMessageType, msg.MessageType,
		"profile", msg.ProfileName)

	if msg.Body == "" {
		logger.WarnContext(ctx, "Empty message received", applog.FieldUser, msg.UserID)
		TextError(http.StatusBadRequest, emptyMessageText).Write(w)
		return
	}

	if !s.allowSender(r, msg) {
		logger.WarnContext(ctx, "Sender rate limit exceeded",
			applog.FieldUser, msg.UserID,
			applog.FieldMessageSID, msg.MessageSID)
		NewResponse().TwiML(slowDownText).Write(w)
		return
	}

	reply, err := s.answer(ctx, msg)
	if err != nil {
		errorType := applog.ErrorTypeInternal
		if errors.Is(err, ledger.ErrPersistence) {
			errorType = applog.ErrorTypeDatabase
		}
		s.events.LogError(ctx, "Message handling failed", err, errorType, reply.Intent.String(),
			applog.NewFields().WithMessage(msg.UserID, msg.MessageSID, reply.Intent.String()))
	}

	NewResponse().TwiML(reply.Text).Write(w)
}

// allowSender charges one message to the sender's budget. Redeliveries of an
// already answered MessageSid are free. Deliveries without a sender fall
// back to the client IP.
func (s *Server) allowSender(r *http.Request, msg WebhookMessage) bool {
	if msg.MessageSID != "" {
		if _, ok := s.replies.Get(msg.MessageSID); ok {
			return true
		}
	}
	key := msg.UserID
	if key == "" {
		key = "ip:" + s.detector.ExtractClientIP(r)
	}
	return s.senders.Allow(key)
}

// answer runs the assistant once per MessageSid. Concurrent deliveries of the
// same message share one call, and successful replies are cached for the
// dedupe TTL. Failed replies are not cached so a retry gets another attempt.
func (s *Server) answer(ctx context.Context, msg WebhookMessage) (assistant.Reply, error) {
	if msg.MessageSID == "" {
		return s.handle(ctx, msg)
	}
	if reply, ok := s.replies.Get(msg.MessageSID); ok {
		s.logger.InfoContext(ctx, "Duplicate delivery answered from cache", applog.FieldMessageSID, msg.MessageSID)
		return reply, nil
	}

	v, err, shared := s.inflight.Do(msg.MessageSID, func() (any, error) {
		if reply, ok := s.replies.Get(msg.MessageSID); ok {
			return reply, nil
		}
		// the shared call outlives a caller that disconnects
		reply, err := s.handle(context.WithoutCancel(ctx), msg)
		if err == nil {
			s.replies.Set(msg.MessageSID, reply)
		}
		return reply, err
	})
	if shared {
		s.logger.DebugContext(ctx, "Concurrent delivery collapsed", applog.FieldMessageSID, msg.MessageSID)
	}
	reply, _ := v.(assistant.Reply)
	return reply, err
}

func (s *Server) handle(ctx context.Context, msg WebhookMessage) (assistant.Reply, error) {
	reply, err := s.messages.HandleMessage(ctx, msg.UserID, msg.Body)
	s.logger.InfoContext(ctx, "Message answered",
		applog.FieldUser, msg.UserID,
		applog.FieldIntent, reply.Intent.String(),
		applog.FieldEntryID, reply.EntryID,
		"reply_chars", len([]rune(reply.Text)))
	return reply, err
}
