// Package wsexecutor streams test case results over websocket as soon as
// each case finishes.
package wsexecutor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/codepractice/remote-judge/client"
	"github.com/codepractice/remote-judge/cmd/remote-judge/model"
	"github.com/codepractice/remote-judge/judger"
	"github.com/codepractice/remote-judge/request"
	"github.com/codepractice/remote-judge/types"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Register registers web socket handle /ws/test
type Register interface {
	Register(*gin.Engine)
}

// New creates new websocket handle
func New(j *judger.Judger, f *request.Factory, logger *zap.Logger) Register {
	return &wsHandle{
		judger:  j,
		factory: f,
		logger:  logger,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

type wsHandle struct {
	judger  *judger.Judger
	factory *request.Factory
	logger  *zap.Logger
}

func (h *wsHandle) Register(r *gin.Engine) {
	r.GET("/ws/test", h.handleWS)
}

func (h *wsHandle) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.Error(err)
		return
	}
	go h.serve(conn)
}

// serve reads a single test request, streams one message per finished case
// and a final finish or error message, then closes the connection
func (h *wsHandle) serve(conn *websocket.Conn) {
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	var req model.TestRequest
	if err := conn.ReadJSON(&req); err != nil {
		h.logger.Sugar().Warn("ws read error:", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// every case sends at most once plus the final message, so sends never block
	sendCh := make(chan model.StreamMessage, len(req.TestCases)+1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		h.sendLoop(ctx, conn, sendCh)
	}()

	// a closed connection cancels the remaining cases
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	sendCh <- h.run(ctx, &req, sendCh)
	<-done
}

func (h *wsHandle) run(ctx context.Context, req *model.TestRequest, sendCh chan<- model.StreamMessage) model.StreamMessage {
	if len(req.TestCases) == 0 {
		return model.StreamMessage{Error: "no test cases provided"}
	}
	j := h.judger
	if req.Language != "" {
		b, err := h.factory.Builder(req.Language)
		if err != nil {
			return model.StreamMessage{Error: err.Error()}
		}
		j = j.WithBuilder(b)
	}
	j = j.WithObserver(judger.ObserverFunc(func(index int, r types.TestCaseResult) {
		sendCh <- model.StreamMessage{Case: &model.CaseEvent{Index: index, Result: r}}
	}))

	v, err := j.RunAll(ctx, req.Source, req.TestCases)
	switch {
	case errors.Is(err, types.ErrEmptyProgram):
		return model.StreamMessage{Error: client.EmptyProgramMessage}
	case err != nil:
		return model.StreamMessage{Error: err.Error()}
	}
	resp := model.NewTestResponse(v)
	return model.StreamMessage{Finish: &resp}
}

func (h *wsHandle) sendLoop(ctx context.Context, conn *websocket.Conn, sendCh <-chan model.StreamMessage) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-sendCh:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(m); err != nil {
				h.logger.Sugar().Warn("ws write error:", err)
				return
			}
			if m.Case == nil {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
