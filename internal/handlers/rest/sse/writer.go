package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrStreamingUnsupported = errors.New("streaming unsupported")

// Writer поток Server-Sent Events поверх http.ResponseWriter.
type Writer struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

// Open пишет заголовки потока и снимает write deadline сервера для этого запроса.
func Open(w http.ResponseWriter) (*Writer, error) {
	rc := http.NewResponseController(w)

	err := rc.SetWriteDeadline(time.Time{})
	if err != nil && !errors.Is(err, http.ErrNotSupported) {
		return nil, fmt.Errorf("reset write deadline: %w", err)
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := rc.Flush(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStreamingUnsupported, err)
	}

	return &Writer{w: w, rc: rc}, nil
}

func (s *Writer) Event(name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", name, err)
	}

	_, err = fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, data)
	if err != nil {
		return err
	}
	return s.rc.Flush()
}

// Heartbeat комментарий, чтобы прокси не закрывали простаивающее соединение.
func (s *Writer) Heartbeat() error {
	_, err := fmt.Fprint(s.w, ": ping\n\n")
	if err != nil {
		return err
	}
	return s.rc.Flush()
}
