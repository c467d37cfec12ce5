package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// DefaultFilterExpression logs rejected API submissions
const DefaultFilterExpression = "StatusCode >= 400 && Path matches '^/api/'"

// FilterContext provides the context for filter expression evaluation
type FilterContext struct {
	StatusCode int    `expr:"StatusCode"`
	Method     string `expr:"Method"`
	Path       string `expr:"Path"`
	Query      string `expr:"Query"`
	Resource   string `expr:"Resource"`
}

// SubmissionLogMiddleware writes rejected form submissions as JSON lines.
// Request bodies are never recorded since they carry uploaded files.
type SubmissionLogMiddleware struct {
	out     io.WriteCloser
	mu      sync.RWMutex
	enabled bool

	filterProgram *vm.Program
}

// NewSubmissionLogMiddleware creates a middleware writing to out
func NewSubmissionLogMiddleware(out io.WriteCloser) *SubmissionLogMiddleware {
	m := &SubmissionLogMiddleware{
		out:     out,
		enabled: out != nil,
	}
	if err := m.SetFilterExpression(DefaultFilterExpression); err != nil {
		logrus.Errorf("Failed to compile default filter expression: %v", err)
	}
	return m
}

// SetFilterExpression recompiles and sets a new filter expression
func (m *SubmissionLogMiddleware) SetFilterExpression(expression string) error {
	if expression == "" {
		expression = DefaultFilterExpression
	}

	program, err := expr.Compile(expression, expr.Env(FilterContext{}), expr.AsBool())
	if err != nil {
		return fmt.Errorf("failed to compile filter expression: %w", err)
	}

	m.mu.Lock()
	m.filterProgram = program
	m.mu.Unlock()
	return nil
}

// IsEnabled returns whether entries are written
func (m *SubmissionLogMiddleware) IsEnabled() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.enabled
}

// Middleware returns the Gin middleware function
func (m *SubmissionLogMiddleware) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.IsEnabled() || c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		w := &responseBodyWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = w

		start := time.Now()
		c.Next()

		m.logEntry(&logEntry{
			Timestamp:    start,
			Method:       c.Request.Method,
			Path:         c.Request.URL.Path,
			Query:        c.Request.URL.RawQuery,
			Resource:     c.Param("resource"),
			StatusCode:   c.Writer.Status(),
			Duration:     time.Since(start),
			ContentType:  c.ContentType(),
			ResponseBody: w.body.Bytes(),
			ClientIP:     c.ClientIP(),
		})
	}
}

type logEntry struct {
	Timestamp    time.Time
	Method       string
	Path         string
	Query        string
	Resource     string
	StatusCode   int
	Duration     time.Duration
	ContentType  string
	ResponseBody []byte
	ClientIP     string
}

func (m *SubmissionLogMiddleware) shouldLog(entry *logEntry) bool {
	m.mu.RLock()
	program := m.filterProgram
	m.mu.RUnlock()

	if program == nil {
		return entry.StatusCode >= 400 && strings.HasPrefix(entry.Path, "/api/")
	}

	result, err := expr.Run(program, FilterContext{
		StatusCode: entry.StatusCode,
		Method:     entry.Method,
		Path:       entry.Path,
		Query:      entry.Query,
		Resource:   entry.Resource,
	})
	if err != nil {
		logrus.Errorf("Failed to evaluate filter expression: %v", err)
		return entry.StatusCode >= 400 && strings.HasPrefix(entry.Path, "/api/")
	}
	ok, _ := result.(bool)
	return ok
}

func (m *SubmissionLogMiddleware) logEntry(entry *logEntry) {
	if !m.shouldLog(entry) {
		return
	}

	logData := map[string]interface{}{
		"timestamp":    entry.Timestamp.Format(time.RFC3339Nano),
		"method":       entry.Method,
		"path":         entry.Path,
		"status_code":  entry.StatusCode,
		"duration_ms":  entry.Duration.Milliseconds(),
		"content_type": entry.ContentType,
		"client_ip":    entry.ClientIP,
	}
	if entry.Query != "" {
		logData["query"] = entry.Query
	}
	if entry.Resource != "" {
		logData["resource"] = entry.Resource
	}
	if entry.StatusCode >= 400 && len(entry.ResponseBody) > 0 {
		if json.Valid(entry.ResponseBody) {
			logData["response_body"] = json.RawMessage(entry.ResponseBody)
		} else {
			logData["response_body"] = string(entry.ResponseBody)
		}
	}

	jsonData, err := json.Marshal(logData)
	if err != nil {
		logrus.Errorf("Failed to marshal submission log entry: %v", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled {
		return
	}
	if _, err := m.out.Write(append(jsonData, '\n')); err != nil {
		logrus.Errorf("Failed to write submission log entry: %v", err)
	}
}

// Stop closes the output
func (m *SubmissionLogMiddleware) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.out != nil && m.enabled {
		if err := m.out.Close(); err != nil {
			logrus.Errorf("Failed to close submission log: %v", err)
		}
	}
	m.enabled = false
}

// responseBodyWriter keeps a copy of small response bodies
type responseBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

const maxCapturedBody = 64 << 10

func (w *responseBodyWriter) Write(b []byte) (int, error) {
	if w.body.Len()+len(b) <= maxCapturedBody {
		w.body.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

func (w *responseBodyWriter) WriteString(s string) (int, error) {
	if w.body.Len()+len(s) <= maxCapturedBody {
		w.body.WriteString(s)
	}
	return w.ResponseWriter.WriteString(s)
}
