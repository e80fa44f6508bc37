package router

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ResponseWriter wraps http.ResponseWriter and records the status code for
// request logging middleware.
type ResponseWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

// WriteHeader records the status before delegating.
func (w *ResponseWriter) WriteHeader(status int) {
	if !w.written {
		w.status = status
		w.written = true
	}
	w.ResponseWriter.WriteHeader(status)
}

// Write defaults the status to 200 on first write.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.status = http.StatusOK
		w.written = true
	}
	return w.ResponseWriter.Write(b)
}

// Status returns the status code sent to the client (0 if nothing written).
func (w *ResponseWriter) Status() int { return w.status }

// Context carries a single request through handlers and middleware.
type Context struct {
	Request *http.Request
	Writer  *ResponseWriter

	params map[string]string
	store  map[string]any
}

// Param returns the value of a path parameter (e.g. ":id").
func (c *Context) Param(name string) string { return c.params[name] }

// Query returns a URL query parameter.
func (c *Context) Query(name string) string { return c.Request.URL.Query().Get(name) }

// Set stores a request-scoped value (used by middleware to inject services).
func (c *Context) Set(key string, value any) {
	if c.store == nil {
		c.store = make(map[string]any)
	}
	c.store[key] = value
}

// Get retrieves a request-scoped value.
func (c *Context) Get(key string) (any, bool) {
	value, ok := c.store[key]
	return value, ok
}

// Bind decodes the JSON request body into obj and runs struct validation.
func (c *Context) Bind(obj any) error {
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(obj); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(obj); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// FormFile returns the first uploaded file for the given form field.
func (c *Context) FormFile(name string) (*multipart.FileHeader, error) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		return nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	_, header, err := c.Request.FormFile(name)
	return header, err
}

// JSON writes a JSON response with the given status code.
func (c *Context) JSON(status int, obj any) error {
	c.Writer.Header().Set("Content-Type", "application/json")
	c.Writer.WriteHeader(status)
	return json.NewEncoder(c.Writer).Encode(obj)
}

// NoContent writes an empty response.
func (c *Context) NoContent(status int) error {
	c.Writer.WriteHeader(status)
	return nil
}

// Redirect sends an HTTP redirect.
func (c *Context) Redirect(status int, location string) error {
	http.Redirect(c.Writer, c.Request, location, status)
	return nil
}

// ClientIP returns the originating client address, honoring proxy headers.
func (c *Context) ClientIP() string {
	if fwd := c.Request.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx > 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	if real := c.Request.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return host
}
