package app

import (
	"bytes"

	"go.trai.ch/droidnet/internal/core/ports"
)

// logWriter forwards each complete line written to it as an info message.
type logWriter struct {
	logger ports.Logger
	buf    bytes.Buffer
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadBytes('\n')
		if err != nil {
			// Keep the partial line for the next write.
			w.buf.Write(line)
			return len(p), nil
		}
		w.logger.Info(string(bytes.TrimRight(line, "\r\n")))
	}
}
