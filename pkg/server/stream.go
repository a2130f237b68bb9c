package server

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/matzehuels/escapetime/pkg/errors"
	"github.com/matzehuels/escapetime/pkg/fractal"
	"github.com/matzehuels/escapetime/pkg/pipeline"
)

const errorWriteTimeout = 5 * time.Second

// Stream message types.
const (
	msgRow   = "row"
	msgDone  = "done"
	msgError = "error"
)

type rowMessage struct {
	Type   string                `json:"type"`
	Row    int                   `json:"row"`
	Counts []fractal.EscapeCount `json:"counts"`
}

type doneMessage struct {
	Type     string         `json:"type"`
	ID       string         `json:"id"`
	Rows     int            `json:"rows"`
	Cols     int            `json:"cols"`
	CacheHit bool           `json:"cache_hit"`
	Stats    pipeline.Stats `json:"stats"`
}

type errorMessage struct {
	Type    string      `json:"type"`
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// handleStream computes a chart over a websocket. The client sends one
// options message; the server answers with a row message per completed row
// (in completion order, not row order) followed by a done or error message.
// Closing the socket cancels the computation.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept", "error", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := s.requestContext(r.Context())
	defer cancel()

	var opts pipeline.Options
	if err := wsjson.Read(ctx, conn, &opts); err != nil {
		s.streamError(conn, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid options message"))
		return
	}
	if err := s.prepare(&opts); err != nil {
		s.streamError(conn, err)
		return
	}

	// Nothing more is read; CloseRead cancels ctx when the peer goes away.
	ctx = conn.CloseRead(ctx)
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	rows := make(chan rowMessage, 16)
	opts.OnRow = func(i int, counts []fractal.EscapeCount) {
		select {
		case rows <- rowMessage{Type: msgRow, Row: i, Counts: counts}:
		case <-ctx.Done():
		}
	}

	var (
		res     *pipeline.Result
		execErr error
	)
	go func() {
		defer close(rows)
		res, execErr = s.runner.Execute(ctx, opts)
	}()

	for msg := range rows {
		if ctx.Err() != nil {
			continue
		}
		if err := wsjson.Write(ctx, conn, msg); err != nil {
			s.logger.Debug("stream write failed", "error", err)
			stop()
		}
	}

	if execErr != nil {
		s.streamError(conn, execErr)
		return
	}
	if ctx.Err() != nil {
		return
	}
	done := doneMessage{
		Type:     msgDone,
		ID:       uuid.NewString(),
		Rows:     res.Chart.Rows(),
		Cols:     res.Chart.Cols(),
		CacheHit: res.CacheHit,
		Stats:    res.Stats,
	}
	if err := wsjson.Write(ctx, conn, done); err != nil {
		s.logger.Debug("stream write failed", "error", err)
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

// streamError sends a coded error message and closes the socket. The write
// uses its own deadline so that timeouts can still be reported.
func (s *Server) streamError(conn *websocket.Conn, err error) {
	code := errors.GetCode(err)
	msg := errors.UserMessage(err)
	if code == "" {
		code = errors.ErrCodeInternal
		msg = "internal error"
		s.logger.Error("stream failed", "error", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), errorWriteTimeout)
	defer cancel()
	if err := wsjson.Write(ctx, conn, errorMessage{Type: msgError, Code: code, Message: msg}); err != nil {
		return
	}
	conn.Close(websocket.StatusNormalClosure, string(code))
}
