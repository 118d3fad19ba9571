package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// maxBodyBytes bounds webhook bodies; Twilio payloads are a few KB.
const maxBodyBytes = 64 << 10

// whatsappPrefix is stripped from the Twilio From field to get the user id.
const whatsappPrefix = "whatsapp:"

// WebhookMessage is one inbound chat message as delivered by Twilio.
type WebhookMessage struct {
	From        string
	UserID      string
	Body        string
	ProfileName string
	MessageType string
	MessageSID  string
}

// ParseWebhookMessage reads the Twilio fields from a form or JSON body.
// Missing optional fields get Twilio's defaults; an empty Body is left for
// the caller to reject.
func ParseWebhookMessage(w http.ResponseWriter, r *http.Request) (WebhookMessage, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return WebhookMessage{}, fmt.Errorf("parse webhook body: %w", err)
	}

	msg := WebhookMessage{
		From:        p.Get("From"),
		Body:        p.Get("Body"),
		ProfileName: p.Get("ProfileName"),
		MessageType: p.Get("MessageType"),
		MessageSID:  p.Get("MessageSid"),
	}
	msg.UserID = strings.TrimSpace(strings.TrimPrefix(msg.From, whatsappPrefix))
	if msg.ProfileName == "" {
		msg.ProfileName = "Usuário"
	}
	if msg.MessageType == "" {
		msg.MessageType = "text"
	}
	return msg, nil
}

// RequestBodyParser reads the body once and parses it as JSON when it looks
// like JSON, as form data otherwise.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(r.Body)
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(p.err, &maxErr) {
			p.err = fmt.Errorf("body larger than %d bytes: %w", maxErr.Limit, p.err)
		}
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal([]byte(trimmed), &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Get returns a sanitized string value from the parsed data.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput drops control characters other than tab and newlines and
// trims surrounding whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}
