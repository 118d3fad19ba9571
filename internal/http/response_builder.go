package http

import (
	"encoding/json"
	"encoding/xml"
	"log/slog"
	"net/http"
)

// twimlResponse is the TwiML document Twilio expects back from a messaging
// webhook: one <Message> whose text is sent to the user.
type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// ResponseBuilder provides a fluent API for building responses.
type ResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       []byte
}

// NewResponse creates a new response builder with default 200 status.
func NewResponse() *ResponseBuilder {
	return &ResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *ResponseBuilder) Status(code int) *ResponseBuilder {
	b.statusCode = code
	return b
}

func (b *ResponseBuilder) Header(name, value string) *ResponseBuilder {
	b.headers[name] = value
	return b
}

// Text sets a plain UTF-8 text body.
func (b *ResponseBuilder) Text(s string) *ResponseBuilder {
	b.headers["Content-Type"] = "text/plain; charset=utf-8"
	b.body = []byte(s)
	return b
}

// Body sets a raw body; callers set Content-Type.
func (b *ResponseBuilder) Body(body []byte) *ResponseBuilder {
	b.body = body
	return b
}

// JSON sets v as the JSON body. Encoding failures turn the response into a
// 500.
func (b *ResponseBuilder) JSON(v any) *ResponseBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
		return b.Status(http.StatusInternalServerError).Text("internal error")
	}
	b.headers["Content-Type"] = "application/json"
	b.body = data
	return b
}

// TwiML sets a TwiML body replying with message.
func (b *ResponseBuilder) TwiML(message string) *ResponseBuilder {
	data, err := xml.Marshal(twimlResponse{Message: message})
	if err != nil {
		slog.Error("Failed to encode TwiML response", "error", err)
		return b.Status(http.StatusInternalServerError).Text("internal error")
	}
	b.headers["Content-Type"] = "text/xml; charset=utf-8"
	b.body = append([]byte(xml.Header), data...)
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *ResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// TextError creates a plain-text error response.
func TextError(statusCode int, message string) *ResponseBuilder {
	return NewResponse().Status(statusCode).Text(message)
}
