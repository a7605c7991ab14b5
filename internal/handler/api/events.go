package api

import (
	"io"
	"net/http"
	"time"

	"techpoints/internal/domain/account"
	"techpoints/internal/infra/events"
	"techpoints/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const heartbeatInterval = 15 * time.Second

type EventSource interface {
	Subscribe(topics ...string) *events.Subscription
}

type EventsHandler struct {
	source    EventSource
	heartbeat time.Duration
}

func NewEventsHandler(source *events.Bus) *EventsHandler {
	return &EventsHandler{source: source, heartbeat: heartbeatInterval}
}

// NewEventsHandlerWithSource is used where the bus is replaced or the heartbeat shortened.
func NewEventsHandlerWithSource(source EventSource, heartbeat time.Duration) *EventsHandler {
	return &EventsHandler{source: source, heartbeat: heartbeat}
}

// @Summary Event stream
// @Description Server-sent events for redemptions, point adjustments and catalog changes. Customers only receive their own balance events.
// @Tags events
// @Produce text/event-stream
// @Security BearerAuth
// @Param topic query []string false "Topics to receive" collectionFormat(multi)
// @Success 200 {string} string "event stream"
// @Failure 401 {object} httperr.Response
// @Router /api/events [get]
func (h *EventsHandler) Stream(c *gin.Context) {
	actorID, role, ok := actor(c)
	if !ok {
		return
	}

	sub := h.source.Subscribe(c.QueryArray("topic")...)
	defer sub.Unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Stream(func(_ io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			c.SSEvent("heartbeat", gin.H{"time": time.Now().UTC()})
			return true
		case ev, open := <-sub.Events():
			if !open {
				return false
			}
			if visible(ev, actorID, role) {
				c.SSEvent(ev.Topic, ev)
			}
			return true
		}
	})
}

// Balance-bearing events are private to the customer they concern.
func visible(ev events.Event, actorID uuid.UUID, role account.Role) bool {
	if role != account.RoleCustomer {
		return true
	}
	switch p := ev.Payload.(type) {
	case shared.ProductRedeemedEvent:
		return p.CustomerID == actorID
	case shared.PointsAdjustedEvent:
		return p.CustomerID == actorID
	default:
		return true
	}
}
