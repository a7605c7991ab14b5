//go:build unit

package api_test

import (
	"bufio"
	"context"
	"net/http"
	nethttptest "net/http/httptest"
	"strings"
	"testing"
	"time"

	"techpoints/internal/domain/account"
	"techpoints/internal/handler/api"
	"techpoints/internal/infra/events"
	"techpoints/internal/pkg/clock"
	"techpoints/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signallingSource reports each subscription so publishes are not lost
// before the stream is attached.
type signallingSource struct {
	bus        *events.Bus
	subscribed chan struct{}
}

func (s *signallingSource) Subscribe(topics ...string) *events.Subscription {
	sub := s.bus.Subscribe(topics...)
	s.subscribed <- struct{}{}
	return sub
}

type sseFrame struct {
	event string
	data  string
}

func openStream(t *testing.T, srv *nethttptest.Server, query string, accountID uuid.UUID, role account.Role) (*bufio.Scanner, func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events"+query, nil)
	require.NoError(t, err)
	req.Header.Set(testAccountHeader, accountID.String())
	req.Header.Set(testRoleHeader, role.String())

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	return bufio.NewScanner(resp.Body), func() {
		cancel()
		_ = resp.Body.Close()
	}
}

func nextFrame(t *testing.T, sc *bufio.Scanner) sseFrame {
	t.Helper()

	var f sseFrame
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if f.event != "" {
				return f
			}
		case strings.HasPrefix(line, "event:"):
			f.event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			f.data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
	require.NoError(t, sc.Err())
	t.Fatal("stream closed before a frame arrived")
	return f
}

func newEventsServer(t *testing.T) (*nethttptest.Server, *events.Bus, *signallingSource) {
	t.Helper()

	bus := events.NewBus(clock.NewRealClock())
	source := &signallingSource{bus: bus, subscribed: make(chan struct{}, 1)}
	h := api.NewEventsHandlerWithSource(source, time.Hour)

	engine := newEngine()
	engine.GET("/events", fakeAuth, h.Stream)
	srv := nethttptest.NewServer(engine)
	t.Cleanup(func() {
		srv.Close()
		bus.Close()
	})
	return srv, bus, source
}

func awaitSubscription(t *testing.T, source *signallingSource) {
	t.Helper()
	select {
	case <-source.subscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("stream never subscribed")
	}
}

func TestEventsStream_CustomerOnlySeesOwnBalanceEvents(t *testing.T) {
	srv, bus, source := newEventsServer(t)
	self, other := uuid.New(), uuid.New()

	sc, closeStream := openStream(t, srv, "", self, account.RoleCustomer)
	defer closeStream()
	awaitSubscription(t, source)

	bus.Publish(shared.TopicProductRedeemed, shared.ProductRedeemedEvent{CustomerID: other, CostPoints: 100})
	bus.Publish(shared.TopicPointsAdjusted, shared.PointsAdjustedEvent{CustomerID: other, Amount: 50})
	bus.Publish(shared.TopicProductRedeemed, shared.ProductRedeemedEvent{CustomerID: self, CostPoints: 300})

	frame := nextFrame(t, sc)
	assert.Equal(t, shared.TopicProductRedeemed, frame.event)
	assert.Contains(t, frame.data, self.String())
	assert.NotContains(t, frame.data, other.String())
}

func TestEventsStream_TopicFilter(t *testing.T) {
	srv, bus, source := newEventsServer(t)
	admin := uuid.New()

	sc, closeStream := openStream(t, srv, "?topic="+shared.TopicCatalogChanged, admin, account.RoleAdmin)
	defer closeStream()
	awaitSubscription(t, source)

	productID := uuid.New()
	bus.Publish(shared.TopicProductRedeemed, shared.ProductRedeemedEvent{CustomerID: uuid.New()})
	bus.Publish(shared.TopicCatalogChanged, shared.CatalogChangedEvent{ProductID: productID, Action: "created"})

	frame := nextFrame(t, sc)
	assert.Equal(t, shared.TopicCatalogChanged, frame.event)
	assert.Contains(t, frame.data, productID.String())
}

func TestEventsStream_StaffSeeEveryCustomer(t *testing.T) {
	srv, bus, source := newEventsServer(t)
	store, customer := uuid.New(), uuid.New()

	sc, closeStream := openStream(t, srv, "?topic="+shared.TopicPointsAdjusted, store, account.RoleStore)
	defer closeStream()
	awaitSubscription(t, source)

	bus.Publish(shared.TopicPointsAdjusted, shared.PointsAdjustedEvent{CustomerID: customer, ActorID: store, Amount: 500})

	frame := nextFrame(t, sc)
	assert.Equal(t, shared.TopicPointsAdjusted, frame.event)
	assert.Contains(t, frame.data, customer.String())
}

func TestEventsStream_RequiresIdentity(t *testing.T) {
	srv, _, _ := newEventsServer(t)

	resp, err := srv.Client().Get(srv.URL + "/events")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
