package inspect

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EchoMessage is the confirmation returned by the echo endpoint.
const EchoMessage = "Headers and cookies logged to server console"

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Timestamp formats t the way the inspector reports times.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// EchoResponse is the acknowledgment sent back to the caller.
type EchoResponse struct {
	Success         bool              `json:"success"`
	Message         string            `json:"message"`
	Timestamp       string            `json:"timestamp"`
	ReceivedHeaders map[string]string `json:"receivedHeaders"`
	ReceivedCookies map[string]string `json:"receivedCookies"`
	ReceivedBody    any               `json:"receivedBody"`
}

// NewTranscript returns a logger that writes each message verbatim, one per
// line, with no level, time or caller decoration.
func NewTranscript(w io.Writer) *zap.Logger {
	encoder := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey: "msg",
		LineEnding: zapcore.DefaultLineEnding,
	})
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), zapcore.DebugLevel))
}

// EchoLogger writes received request data to the console transcript and
// echoes it back as JSON.
type EchoLogger struct {
	transcript *zap.Logger
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

// NewEchoLogger creates an EchoLogger. transcript receives the human
// readable call log, logger the structured summary.
func NewEchoLogger(transcript, logger *zap.Logger) *EchoLogger {
	return &EchoLogger{
		transcript: transcript,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Log writes the transcript of one call and returns the response to send.
func (e *EchoLogger) Log(method, url string, snap Snapshot) (EchoResponse, error) {
	ts := Timestamp(e.now())
	t := e.transcript

	t.Info("=== API ENDPOINT CALLED ===")
	t.Info("Timestamp: " + ts)
	t.Info("Method: " + method)
	t.Info("URL: " + url)

	t.Info("")
	t.Info("--- Request Headers ---")
	for _, name := range sortedKeys(snap.Headers) {
		t.Info(name + ": " + snap.Headers[name])
	}

	t.Info("")
	t.Info("--- Cookies ---")
	if len(snap.Cookies) > 0 {
		for _, name := range sortedKeys(snap.Cookies) {
			t.Info(name + ": " + snap.Cookies[name])
		}
	} else {
		t.Info("No cookies found")
	}

	t.Info("")
	t.Info("--- Request Body ---")
	body, err := PrettyJSON(snap.Body)
	if err != nil {
		return EchoResponse{}, err
	}
	t.Info(body)

	t.Info("=== END API CALL ===")
	t.Info("")

	e.logger.Info("Echo request logged",
		zap.String("call_id", e.newID()),
		zap.String("method", method),
		zap.String("url", url),
		zap.Int("headers", len(snap.Headers)),
		zap.Int("cookies", len(snap.Cookies)))

	return EchoResponse{
		Success:         true,
		Message:         EchoMessage,
		Timestamp:       ts,
		ReceivedHeaders: snap.Headers,
		ReceivedCookies: snap.Cookies,
		ReceivedBody:    snap.Body,
	}, nil
}

// ServeHTTP parses the JSON body, logs the call and echoes it.
func (e *EchoLogger) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := ParseJSONBody(w, r)
	if err != nil {
		status := http.StatusBadRequest
		var bodyErr *BodyError
		if errors.As(err, &bodyErr) {
			status = bodyErr.Status
		}
		e.logger.Warn("Rejected request body",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
		http.Error(w, http.StatusText(status), status)
		return
	}

	snap := NewSnapshot(r)
	snap.Body = body

	resp, err := e.Log(r.Method, r.URL.RequestURI(), snap)
	if err != nil {
		e.logger.Error("Failed to log echo request", zap.Error(err))
		http.Error(w, "failed to log request", http.StatusInternalServerError)
		return
	}

	if err := writeJSON(w, resp); err != nil {
		e.logger.Error("Failed to encode echo response", zap.Error(err))
	}
}
