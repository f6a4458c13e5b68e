package workers

import (
	"chat-feed/contract"
	"chat-feed/domain"
	"chat-feed/domain/event"
	"chat-feed/mocks"
	"chat-feed/observability"
	"chat-feed/sink"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const room = domain.RoomID("general")

func newLiveView(t *testing.T, window time.Duration) (*LiveView, *observability.FeedMetrics, *mocks.MockIRegistry, *mocks.MockFirstPageLoader) {
	t.Helper()
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockIRegistry(ctrl)
	loader := mocks.NewMockFirstPageLoader(ctrl)
	metrics := observability.NewFeedMetrics(prometheus.NewRegistry())
	log := logs.GetLoggerFromLevel(slog.LevelError)
	return NewLiveView(log, registry, loader, metrics, window, 100*time.Millisecond).WithName("live_view_test"), metrics, registry, loader
}

func TestLiveView_Coalesces_A_Burst_Into_One_Recomputation(t *testing.T) {
	req := require.New(t)
	view, metrics, registry, loader := newLiveView(t, 20*time.Millisecond)
	snapshots := sink.NewSnapshotSink()
	registry.EXPECT().GetSinksForRoom(room).
		Return([]contract.Subscriber{{ID: "s1", Room: room, PageSize: 20, Sink: snapshots}}).
		Times(1)
	loader.EXPECT().Page(gomock.Any(), room, nil, 20).
		Return(domain.Page{HasMore: true}, nil).
		Times(1)

	// Given ten writes landing before the worker wakes up
	for i := 0; i < 10; i++ {
		view.Publish(event.Invalidation{Room: room, Cause: event.CauseSent})
	}

	// When the worker runs
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	go func() { _ = view.Run(ctx) }()

	// Then a single snapshot is pushed
	snapshot, err := snapshots.Next(ctx)
	req.NoError(err)
	req.Equal(uint64(1), snapshot.Version)
	req.Equal(20, snapshot.PageSize)
	req.True(snapshot.Page.HasMore)
	req.Equal(float64(10), testutil.ToFloat64(metrics.Invalidations))
	req.Equal(float64(9), testutil.ToFloat64(metrics.CoalescedInvalidations))
	req.Equal(float64(1), testutil.ToFloat64(metrics.Recomputations))
}

func TestLiveView_Recomputes_Once_Per_Page_Size(t *testing.T) {
	req := require.New(t)
	view, metrics, registry, loader := newLiveView(t, 0)
	a, b, c := sink.NewSnapshotSink(), sink.NewSnapshotSink(), sink.NewSnapshotSink()
	registry.EXPECT().GetSinksForRoom(room).Return([]contract.Subscriber{
		{ID: "a", Room: room, PageSize: 10, Sink: a},
		{ID: "b", Room: room, PageSize: 10, Sink: b},
		{ID: "c", Room: room, PageSize: 30, Sink: c},
	})
	loader.EXPECT().Page(gomock.Any(), room, nil, 10).Return(domain.Page{}, nil).Times(1)
	loader.EXPECT().Page(gomock.Any(), room, nil, 30).Return(domain.Page{}, nil).Times(1)

	view.Refresh(context.Background(), room)

	for _, s := range []*sink.SnapshotSink{a, b, c} {
		snapshot, ok := s.Take()
		req.True(ok)
		req.Equal(uint64(1), snapshot.Version)
	}
	req.Equal(float64(2), testutil.ToFloat64(metrics.Recomputations))
	req.Equal(float64(3), testutil.ToFloat64(metrics.SnapshotsPushed))
}

func TestLiveView_Versions_Grow_Per_Room(t *testing.T) {
	req := require.New(t)
	view, _, registry, loader := newLiveView(t, 0)
	snapshots := sink.NewSnapshotSink()
	registry.EXPECT().GetSinksForRoom(room).
		Return([]contract.Subscriber{{ID: "s1", Room: room, PageSize: 5, Sink: snapshots}}).
		Times(2)
	loader.EXPECT().Page(gomock.Any(), room, nil, 5).Return(domain.Page{}, nil).Times(2)

	view.Refresh(context.Background(), room)
	first, _ := snapshots.Take()
	view.Refresh(context.Background(), room)
	second, _ := snapshots.Take()

	req.Equal(uint64(1), first.Version)
	req.Equal(uint64(2), second.Version)
}

func TestLiveView_Closed_Sink_Is_Silent(t *testing.T) {
	req := require.New(t)
	view, metrics, registry, loader := newLiveView(t, 0)
	snapshots := sink.NewSnapshotSink()
	registry.EXPECT().GetSinksForRoom(room).
		Return([]contract.Subscriber{{ID: "s1", Room: room, PageSize: 5, Sink: snapshots}})
	loader.EXPECT().Page(gomock.Any(), room, nil, 5).Return(domain.Page{}, nil)

	// Given a subscriber that unsubscribed while the page was recomputed
	snapshots.Close()

	view.Refresh(context.Background(), room)

	// Then nothing is observable and it is not counted as a failure
	_, ok := snapshots.Take()
	req.False(ok)
	req.Equal(float64(0), testutil.ToFloat64(metrics.SnapshotsPushed))
	req.Equal(float64(0), testutil.ToFloat64(metrics.PushFailures))
}

func TestLiveView_Loader_Failure_Pushes_Nothing(t *testing.T) {
	req := require.New(t)
	view, metrics, registry, loader := newLiveView(t, 0)
	snapshots := sink.NewSnapshotSink()
	registry.EXPECT().GetSinksForRoom(room).
		Return([]contract.Subscriber{{ID: "s1", Room: room, PageSize: 5, Sink: snapshots}})
	loader.EXPECT().Page(gomock.Any(), room, nil, 5).Return(domain.Page{}, errors.New("disk on fire"))

	view.Refresh(context.Background(), room)

	_, ok := snapshots.Take()
	req.False(ok)
	req.Equal(float64(1), testutil.ToFloat64(metrics.RecomputeFailures))
}

func TestLiveView_No_Subscriber_No_Recomputation(t *testing.T) {
	view, _, registry, _ := newLiveView(t, 0)
	registry.EXPECT().GetSinksForRoom(room).Return(nil)

	// The loader mock fails the test if it is called
	view.Refresh(context.Background(), room)
}

func TestLiveView_Slow_Sink_Counts_As_Push_Failure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	view, metrics, registry, loader := newLiveView(t, 0)
	slow := mocks.NewMockEventSink(ctrl)
	registry.EXPECT().GetSinksForRoom(room).
		Return([]contract.Subscriber{{ID: "slow", Room: room, PageSize: 5, Sink: slow}})
	loader.EXPECT().Page(gomock.Any(), room, nil, 5).Return(domain.Page{}, nil)
	slow.EXPECT().Consume(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, e event.DomainEvent) error {
			<-ctx.Done()
			return ctx.Err()
		})

	view.Refresh(context.Background(), room)

	req.Equal(float64(1), testutil.ToFloat64(metrics.PushFailures))
}
