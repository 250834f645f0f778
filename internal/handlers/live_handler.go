package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Antonio-217/controle-financeiro/internal/budget"
	apperrors "github.com/Antonio-217/controle-financeiro/internal/errors"
	"github.com/Antonio-217/controle-financeiro/internal/logger"
	"github.com/Antonio-217/controle-financeiro/internal/realtime"
	"github.com/Antonio-217/controle-financeiro/internal/services"
)

const (
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = (livePongWait * 9) / 10
	liveReadLimit  = 1024
)

// Live commands sent by the client.
const (
	LiveActionSelect   = "select"
	LiveActionNext     = "next"
	LiveActionPrevious = "previous"
)

// LiveCommand changes the period a live connection follows.
type LiveCommand struct {
	Action string `json:"action"`
	Period string `json:"period,omitempty"`
}

// LiveMessage is pushed to the client: a snapshot or an error.
type LiveMessage struct {
	Type       string              `json:"type"`
	Generation uint64              `json:"generation,omitempty"`
	Dashboard  *services.Dashboard `json:"dashboard,omitempty"`
	Error      *ErrorDetail        `json:"error,omitempty"`
}

// LiveHandler streams dashboard snapshots over WebSocket.
type LiveHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	now      func() time.Time
}

// NewLiveHandler creates a LiveHandler. allowedOrigin "*" accepts any origin.
func NewLiveHandler(hub *realtime.Hub, allowedOrigin string) *LiveHandler {
	return &LiveHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "*" || origin == "" || origin == allowedOrigin
			},
		},
		now: time.Now,
	}
}

// Live upgrades to a WebSocket that receives a snapshot of the selected month
// after every change to the group's ledger
// @Summary     Live dashboard
// @Description WebSocket. Send {"action":"next"}, {"action":"previous"} or {"action":"select","period":"YYYY-MM"} to change month. Snapshots of a previous month are never sent after the change. If the first month cannot be loaded an error message is sent and the socket is closed with code 1011.
// @Tags        dashboard
// @Security    BearerAuth
// @Param       period query string false "Initial month as YYYY-MM (default current month)"
// @Param       token  query string false "Access token, for clients that cannot set headers"
// @Success     101 {object} LiveMessage "Switching protocols"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Origin not allowed"
// @Router      /live [get]
func (h *LiveHandler) Live(c *gin.Context) {
	sess, err := getSession(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	period, _, err := parsePeriodQuery(c, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}
	if !h.upgrader.CheckOrigin(c.Request) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrForbidden, "Origin not allowed"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied
		logger.Get().Warnw("websocket upgrade failed", "error", err, "group_id", sess.GroupID)
		return
	}

	view := realtime.NewView(h.hub, sess.GroupID)
	log := logger.Named("live").With("group_id", sess.GroupID, "user_id", sess.UserID)
	log.Infow("Live connection opened", "period", period.String())
	defer log.Infow("Live connection closed")

	h.serve(conn, view, period)
}

func (h *LiveHandler) serve(conn *websocket.Conn, view *realtime.View, period budget.Period) {
	defer conn.Close()
	defer view.Close()

	notices := make(chan LiveMessage, 4)
	notify := func(msg LiveMessage) {
		select {
		case notices <- msg:
		default:
		}
	}

	// without a first month there is nothing to navigate from
	if err := view.Select(period); err != nil {
		_ = writeMessage(conn, errorMessage(err))
		closeMsg := websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "month unavailable")
		_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(liveWriteWait))
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		readCommands(conn, view, notify)
	}()

	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()

	for {
		var err error
		select {
		case snap, ok := <-view.Snapshots():
			if !ok {
				return
			}
			err = writeMessage(conn, LiveMessage{Type: "snapshot", Generation: snap.Generation, Dashboard: snap.Dashboard})
		case msg := <-notices:
			err = writeMessage(conn, msg)
		case <-ticker.C:
			err = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait))
		case <-done:
			return
		}
		if err != nil {
			return
		}
	}
}

func readCommands(conn *websocket.Conn, view *realtime.View, notify func(LiveMessage)) {
	conn.SetReadLimit(liveReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	for {
		var cmd LiveCommand
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Get().Debugw("live read failed", "error", err)
			}
			return
		}
		if err := applyCommand(view, cmd); err != nil {
			notify(errorMessage(err))
		}
	}
}

func applyCommand(view *realtime.View, cmd LiveCommand) error {
	switch cmd.Action {
	case LiveActionNext:
		return view.Next()
	case LiveActionPrevious:
		return view.Previous()
	case LiveActionSelect:
		p, err := budget.ParsePeriod(cmd.Period)
		if err != nil {
			return err
		}
		return view.Select(p)
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "action must be select, next or previous")
	}
}

func writeMessage(conn *websocket.Conn, msg LiveMessage) error {
	_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
	return conn.WriteJSON(msg)
}

func errorMessage(err error) LiveMessage {
	appErr, ok := apperrors.As(err)
	if !ok {
		logger.Get().Errorw("live command failed", "error", err)
		appErr = apperrors.ErrInternalServer
	}
	return LiveMessage{Type: "error", Error: &ErrorDetail{Code: appErr.Code, Message: appErr.Message}}
}
