package server

import (
	"net/http"
	"time"

	"github.com/ZaguanLabs/gotmemo"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// eventBuffer is how many events a slow stream may lag behind before
// further events for it are dropped.
const eventBuffer = 64

const keepAliveInterval = 30 * time.Second

// EventPayload is the data of one server-sent event.
type EventPayload struct {
	Type           string `json:"type"`
	TargetLang     string `json:"target_lang"`
	Key            string `json:"key,omitempty"`
	SourceText     string `json:"source_text,omitempty"`
	TranslatedText string `json:"translated_text,omitempty"`
}

func newEventPayload(ev gotmemo.Event) EventPayload {
	return EventPayload{
		Type:           ev.Type.String(),
		TargetLang:     ev.TargetLang,
		Key:            ev.Key,
		SourceText:     ev.Record.SourceText,
		TranslatedText: ev.Record.TranslatedText,
	}
}

// events streams engine cache changes as server-sent events. A "ready" event
// is sent once the subscription is registered.
func (s *Server) events(c *gin.Context) {
	e, ok := engineFrom(c)
	if !ok {
		return
	}

	id := uuid.NewString()
	ch := make(chan gotmemo.Event, eventBuffer)
	unsubscribe := e.Subscribe(func(ev gotmemo.Event) {
		select {
		case ch <- ev:
		default:
			s.logger.Warn("event stream lagging, dropping event",
				zap.String("subscriber", id),
				zap.String("type", ev.Type.String()),
			)
		}
	})
	defer unsubscribe()

	s.logger.Debug("event stream opened", zap.String("subscriber", id))
	defer s.logger.Debug("event stream closed", zap.String("subscriber", id))

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	c.SSEvent("ready", gin.H{"subscriber": id, "target_lang": e.TargetLang()})
	c.Writer.Flush()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ch:
			c.SSEvent(ev.Type.String(), newEventPayload(ev))
			c.Writer.Flush()
		case <-ticker.C:
			if _, err := c.Writer.Write([]byte(": keep-alive\n\n")); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
