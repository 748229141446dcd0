// Package responsewriter records what a handler wrote so middleware can log
// and measure it afterwards.
package responsewriter

import (
	"net/http"
	"time"
)

// ResponseWriter wraps http.ResponseWriter and records status, size and timing.
type ResponseWriter struct {
	http.ResponseWriter
	statusCode    int
	bytesWritten  int
	headerWritten bool
	start         time.Time
}

// Wrap starts recording w. The status defaults to 200 when the handler never calls WriteHeader.
func Wrap(w http.ResponseWriter) *ResponseWriter {
	if rw, ok := w.(*ResponseWriter); ok {
		return rw
	}
	return &ResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
		start:          time.Now(),
	}
}

// WriteHeader records the first status code; later calls are dropped like net/http does.
func (w *ResponseWriter) WriteHeader(statusCode int) {
	if w.headerWritten {
		return
	}
	w.statusCode = statusCode
	w.headerWritten = true
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytesWritten += n
	return n, err
}

// Flush forwards to the underlying writer when it supports flushing.
func (w *ResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		if !w.headerWritten {
			w.WriteHeader(http.StatusOK)
		}
		f.Flush()
	}
}

// StatusCode returns the recorded HTTP status code.
func (w *ResponseWriter) StatusCode() int { return w.statusCode }

// BytesWritten returns the number of body bytes written.
func (w *ResponseWriter) BytesWritten() int { return w.bytesWritten }

// Elapsed is the time since Wrap.
func (w *ResponseWriter) Elapsed() time.Duration { return time.Since(w.start) }

// Unwrap returns the underlying http.ResponseWriter (for http.ResponseController support).
func (w *ResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
