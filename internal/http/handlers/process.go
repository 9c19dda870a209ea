package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"hairfluencer/internal/infra"
	"hairfluencer/internal/pipeline"
	"hairfluencer/internal/progress"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

// StartProcess kicks off an edit in the background; clients follow it via
// the progress endpoints.
func (a *App) StartProcess(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := c.Start(a.baseCtx()); err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusAccepted, sessionView(c))
}

func (a *App) CancelProcess(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	if !c.Cancel() {
		a.error(w, http.StatusConflict, "not_running", "no processing in progress")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type progressResponse struct {
	Current progress.Checkpoint   `json:"current"`
	History []progress.Checkpoint `json:"history"`
	Done    bool                  `json:"done"`
	State   pipeline.State        `json:"state"`
	Failure *pipeline.Failure     `json:"failure,omitempty"`
}

func (a *App) Progress(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	t := c.Progress()
	history := t.History()
	if history == nil {
		history = []progress.Checkpoint{}
	}
	a.json(w, http.StatusOK, progressResponse{
		Current: t.Current(),
		History: history,
		Done:    t.Done(),
		State:   c.State(),
		Failure: c.Failure(),
	})
}

type progressMessage struct {
	Type       string               `json:"type"`
	Checkpoint *progress.Checkpoint `json:"checkpoint,omitempty"`
	State      pipeline.State       `json:"state,omitempty"`
	Failure    *pipeline.Failure    `json:"failure,omitempty"`
}

// ProgressWS streams checkpoints of the current run over a websocket and
// finishes with a "done" message carrying the final state.
func (a *App) ProgressWS(w http.ResponseWriter, r *http.Request) {
	c, ok := a.session(w, r)
	if !ok {
		return
	}
	conn, err := a.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		infra.LoggerFromContext(r.Context(), a.Logger).Debug().Err(err).Msg("handlers: websocket upgrade failed")
		return
	}
	defer conn.Close()
	// The server read deadline survives the hijack.
	_ = conn.SetReadDeadline(time.Time{})

	t := c.Progress()
	updates, cancel := t.Subscribe()
	defer cancel()

	// Drain client frames so close and ping control messages are handled.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	write := func(m progressMessage) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(m) == nil
	}

	current := t.Current()
	if !write(progressMessage{Type: "checkpoint", Checkpoint: &current}) {
		return
	}
	sent := current.Percent

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case cp, open := <-updates:
			if !open {
				_ = c.Wait(r.Context())
				write(progressMessage{Type: "done", State: c.State(), Failure: c.Failure()})
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(wsWriteWait))
				return
			}
			if cp.Percent <= sent {
				continue
			}
			if !write(progressMessage{Type: "checkpoint", Checkpoint: &cp}) {
				return
			}
			sent = cp.Percent
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		case <-gone:
			return
		case <-r.Context().Done():
			return
		}
	}
}
