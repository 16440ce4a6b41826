package webd

import (
	"encoding/json"
	"log"
	"log/slog"

	"github.com/olahol/melody"

	"github.com/strideway/strided/events"
	"github.com/strideway/strided/types/track"
)

type websocketAction string

var (
	websocketActionEntry websocketAction = "entry"
	websocketActionState websocketAction = "state"
)

type broadcast struct {
	Action websocketAction `json:"action"`
	Entry  *track.Entry    `json:"entry,omitempty"`
	Active *bool           `json:"active,omitempty"`
}

// initMelody sets up the websocket handler and the feed broadcaster once per
// daemon; NewRouter may be called again without re-subscribing the feeds.
func (s *WebDaemon) initMelody() {
	s.melodyOnce.Do(s.setupMelody)
}

func (s *WebDaemon) setupMelody() {
	s.melodyInstance = melody.New()

	s.melodyInstance.HandleConnect(func(sess *melody.Session) {
		log.Println("[websocket] connected", sess.Request.RemoteAddr)
		// Greet with the current fused state so clients render immediately.
		snap := s.engine.Snapshot()
		b, _ := json.Marshal(snap)
		_ = sess.Write(b)
	})

	// Right now don't care about incoming messages from clients. Log and drop.
	s.melodyInstance.HandleMessage(loggingHandler)

	s.melodyInstance.HandleDisconnect(func(sess *melody.Session) {
		log.Println("[websocket] disconnected", sess.Request.RemoteAddr)
	})

	s.melodyInstance.HandleError(func(sess *melody.Session, e error) {
		log.Println("[websocket] error", e, sess.Request.RemoteAddr)
	})

	// Broadcast every accepted entry and every lifecycle transition to all
	// connected clients, as fused. This is live view data, not the stored
	// route record.
	entries := make(chan *track.Entry)
	s.entrySub = events.NewEntryFeed.Subscribe(entries)
	states := make(chan bool)
	s.stateSub = events.StateChangeFeed.Subscribe(states)
	go func() {
		for {
			select {
			case entry := <-entries:
				s.recent.Add(entry)
				b, err := json.Marshal(broadcast{Action: websocketActionEntry, Entry: entry})
				if err != nil {
					slog.Error("Failed to marshal entry event", "error", err)
					continue
				}
				if err := s.melodyInstance.Broadcast(b); err != nil {
					slog.Warn("Failed to broadcast entry event", "error", err)
				}
			case active := <-states:
				b, err := json.Marshal(broadcast{Action: websocketActionState, Active: &active})
				if err != nil {
					slog.Error("Failed to marshal state event", "error", err)
					continue
				}
				if err := s.melodyInstance.Broadcast(b); err != nil {
					slog.Warn("Failed to broadcast state event", "error", err)
				}
			case err := <-s.entrySub.Err():
				// A nil error is a clean Unsubscribe from Close.
				if err != nil {
					slog.Error("Entry feed subscription failed", "error", err)
				}
				return
			case err := <-s.stateSub.Err():
				if err != nil {
					slog.Error("State feed subscription failed", "error", err)
				}
				return
			}
		}
	}()
}

// on request
func loggingHandler(sess *melody.Session, msg []byte) {
	log.Println("[websocket] message", string(msg))
}
