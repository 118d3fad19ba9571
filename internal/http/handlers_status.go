package http

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"assistente/internal/core"
	applog "assistente/internal/log"
)

// statusVersion is reported by GET /status.
const statusVersion = "2.0"

var exampleCommands = []string{
	"Gastei 50 reais no mercado",
	"Recebi 1000 de salário",
	"Mostre meus gastos de hoje",
	"Qual meu saldo?",
	"Relatório da semana",
}

type indexPage struct {
	Now         string
	Environment string
	Entries     int64
	Users       int64
	WebhookURL  string
	Examples    []string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := s.stats.Stats(ctx)
	if err != nil {
		applog.FromContext(ctx).WarnContext(ctx, "Ledger stats unavailable", applog.FieldError, err)
		stats = core.LedgerStats{}
	}

	env := "Desenvolvimento"
	if s.production {
		env = "Produção"
	}
	page := indexPage{
		Now:         s.clock.Now().Format("15:04:05 - 02/01/2006"),
		Environment: env,
		Entries:     stats.Entries,
		Users:       stats.Users,
		WebhookURL:  webhookURL(r),
		Examples:    exampleCommands,
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "status.html", page); err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Template render failed", applog.FieldError, err)
		TextError(http.StatusInternalServerError, "template error").Write(w)
		return
	}
	NewResponse().
		Header("Content-Type", "text/html; charset=utf-8").
		Header("Cache-Control", "no-store").
		Body(buf.Bytes()).
		Write(w)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]string{
		"status":      "online",
		"timestamp":   s.clock.Now().Format(time.RFC3339),
		"version":     statusVersion,
		"environment": s.environment(),
	}).Write(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	if err := s.stats.Ping(ctx); err != nil {
		applog.FromContext(ctx).ErrorContext(ctx, "Health check failed", applog.FieldError, err)
		NewResponse().
			Status(http.StatusInternalServerError).
			JSON(map[string]string{"status": "unhealthy", "error": err.Error()}).
			Write(w)
		return
	}
	NewResponse().JSON(map[string]string{"status": "healthy"}).Write(w)
}

// webhookURL is the address Twilio should be configured with, derived from
// the request that loaded the status page.
func webhookURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + "/webhook"
}
