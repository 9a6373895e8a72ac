// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing HTMX responses.
// It provides a fluent API for building HX-Trigger headers and consistent
// response formatting.

package http

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
)

// HTMXResponseBuilder provides a fluent API for building HTMX responses.
// It encapsulates the construction of HX-Trigger headers and response bodies.
type HTMXResponseBuilder struct {
	triggers   map[string]interface{}
	statusCode int
	body       []byte
	headers    map[string]string
}

// NewHTMXResponse creates a new response builder with default 200 status.
func NewHTMXResponse() *HTMXResponseBuilder {
	return &HTMXResponseBuilder{
		triggers:   make(map[string]interface{}),
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *HTMXResponseBuilder) Status(code int) *HTMXResponseBuilder {
	b.statusCode = code
	return b
}

// Trigger adds a named trigger with optional data to the HX-Trigger header.
func (b *HTMXResponseBuilder) Trigger(name string, data interface{}) *HTMXResponseBuilder {
	b.triggers[name] = data
	return b
}

// TriggerDashboardUpdated announces a re-rendered dashboard with its row
// count and the snapshot it was computed from.
func (b *HTMXResponseBuilder) TriggerDashboardUpdated(rows int, snapshotID string) *HTMXResponseBuilder {
	return b.Trigger("dashboard:updated", map[string]interface{}{
		"rows":     rows,
		"snapshot": snapshotID,
	})
}

// NotificationType represents the type of notification to display.
type NotificationType string

const (
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
)

// TriggerNotification adds a show-notification trigger with the specified parameters.
func (b *HTMXResponseBuilder) TriggerNotification(notifType NotificationType, message string, durationMs int) *HTMXResponseBuilder {
	return b.Trigger("show-notification", map[string]interface{}{
		"type":     string(notifType),
		"message":  message,
		"duration": durationMs,
	})
}

// TriggerErrorNotification is a convenience method for error notifications.
func (b *HTMXResponseBuilder) TriggerErrorNotification(message string) *HTMXResponseBuilder {
	return b.TriggerNotification(NotificationError, message, 5000)
}

// Header adds a custom header to the response.
func (b *HTMXResponseBuilder) Header(name, value string) *HTMXResponseBuilder {
	b.headers[name] = value
	return b
}

// PushURL makes htmx record url in the browser history.
func (b *HTMXResponseBuilder) PushURL(url string) *HTMXResponseBuilder {
	return b.Header("HX-Push-Url", url)
}

// Body sets the response body as bytes.
func (b *HTMXResponseBuilder) Body(content []byte) *HTMXResponseBuilder {
	b.body = content
	return b
}

// BodyHTML sets the response body as HTML content.
func (b *HTMXResponseBuilder) BodyHTML(html []byte) *HTMXResponseBuilder {
	b.headers["Content-Type"] = "text/html; charset=utf-8"
	b.body = html
	return b
}

// JSON sets v as the JSON response body.
func (b *HTMXResponseBuilder) JSON(v interface{}) *HTMXResponseBuilder {
	data, err := json.Marshal(v)
	if err != nil {
		return InternalServerError("No se pudo codificar la respuesta")
	}
	b.headers["Content-Type"] = "application/json"
	b.body = append(data, '\n')
	return b
}

// Attachment sets the body as a downloadable file.
func (b *HTMXResponseBuilder) Attachment(filename, contentType string, content []byte) *HTMXResponseBuilder {
	b.headers["Content-Type"] = contentType
	b.headers["Content-Disposition"] = `attachment; filename="` + filename + `"`
	b.headers["Content-Length"] = strconv.Itoa(len(content))
	b.body = content
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *HTMXResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}

	if len(b.triggers) > 0 {
		triggerJSON, err := json.Marshal(b.triggers)
		if err == nil {
			w.Header().Set("HX-Trigger", string(triggerJSON))
		}
	}

	w.WriteHeader(b.statusCode)
	if len(b.body) > 0 {
		_, _ = w.Write(b.body)
	}
}

// ErrorResponse creates a standard error response with HTML formatting.
// The message is HTML-escaped for safety.
func ErrorResponse(statusCode int, message string) *HTMXResponseBuilder {
	escapedMsg := template.HTMLEscapeString(message)
	return NewHTMXResponse().
		Status(statusCode).
		BodyHTML([]byte(`<div class="error">` + escapedMsg + `</div>`))
}

// JSONError creates an error response for the JSON API.
func JSONError(statusCode int, message string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(statusCode).
		JSON(map[string]string{"error": message})
}

// InternalServerError creates a 500 Internal Server Error response.
func InternalServerError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusInternalServerError, message)
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusNotFound, message)
}

// ServiceUnavailableError creates a 503 response. The dataset has not been
// loaded yet, so clients are asked to retry.
func ServiceUnavailableError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusServiceUnavailable, message).Header("Retry-After", "5")
}

// TooManyRequestsError creates a 429 response.
func TooManyRequestsError(message string) *HTMXResponseBuilder {
	return ErrorResponse(http.StatusTooManyRequests, message)
}

// MethodNotAllowedError creates a 405 Method Not Allowed error response.
func MethodNotAllowedError(allowedMethods string) *HTMXResponseBuilder {
	return NewHTMXResponse().
		Status(http.StatusMethodNotAllowed).
		Header("Allow", allowedMethods)
}
