// Package responsewriter records the status code and body size of a response
// so middleware (logging, metrics, tracing) can report them after the handler ran.
package responsewriter

import (
	"net/http"
)

// ResponseWriter wraps an http.ResponseWriter and remembers what was written.
type ResponseWriter struct {
	http.ResponseWriter
	status      int
	written     int
	wroteHeader bool
}

// Wrap returns w itself when it is already wrapped, so nested middleware
// share a single recorder.
func Wrap(w http.ResponseWriter) *ResponseWriter {
	if rw, ok := w.(*ResponseWriter); ok {
		return rw
	}
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// WriteHeader forwards the first call only.
func (w *ResponseWriter) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.status = code
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}

// Flush implements http.Flusher when the underlying writer does.
func (w *ResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		if !w.wroteHeader {
			w.WriteHeader(http.StatusOK)
		}
		f.Flush()
	}
}

// StatusCode is the status sent to the client (200 if none was set explicitly).
func (w *ResponseWriter) StatusCode() int { return w.status }

// BytesWritten is the number of body bytes written so far.
func (w *ResponseWriter) BytesWritten() int { return w.written }

// HeaderWritten reports whether the status line has been sent.
func (w *ResponseWriter) HeaderWritten() bool { return w.wroteHeader }

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *ResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
