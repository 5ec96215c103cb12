package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/Jomes01/Kioku/internal/reminder"
	remindermocks "github.com/Jomes01/Kioku/internal/mocks/reminder"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRateLimited_DelegatesCalls(t *testing.T) {
	next := remindermocks.NewNotifier(t)
	n := reminder.Notification{ID: "kioku-a-sameDay"}
	next.EXPECT().Schedule(mock.Anything, n).Return("kioku-a-sameDay", nil).Once()
	next.EXPECT().Cancel(mock.Anything, "kioku-a-sameDay").Return(reminder.ErrNotificationNotFound).Once()
	next.EXPECT().ListScheduled(mock.Anything).Return([]string{"kioku-a-sameDay"}, nil).Once()

	limited := NewRateLimited(next, 0, 1)
	ctx := context.Background()

	id, err := limited.Schedule(ctx, n)
	require.NoError(t, err)
	require.Equal(t, "kioku-a-sameDay", id)
	require.ErrorIs(t, limited.Cancel(ctx, "kioku-a-sameDay"), reminder.ErrNotificationNotFound)
	ids, err := limited.ListScheduled(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"kioku-a-sameDay"}, ids)
}

func TestRateLimited_HonoursContextWhileWaiting(t *testing.T) {
	next := remindermocks.NewNotifier(t)
	next.EXPECT().ListScheduled(mock.Anything).Return(nil, nil).Once()

	limited := NewRateLimited(next, 0.001, 1)

	_, err := limited.ListScheduled(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = limited.ListScheduled(ctx)
	require.Error(t, err)
	require.ErrorContains(t, err, "rate limit")
}
