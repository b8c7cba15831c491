package bookkeeper

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/bookkeeper/internal/store"
	"github.com/roach88/bookkeeper/internal/testutil"
)

var jan1 = testutil.Epoch

// newTestService opens a fresh database and a Service whose clock starts
// at jan1 and advances one minute per read.
func newTestService(t *testing.T) (*Service, *testutil.DeterministicClock) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, repos, err := Open(context.Background(), filepath.Join(t.TempDir(), "books.db"), store.Options{Logger: logger})
	require.NoError(t, err)

	clock := testutil.NewDeterministicClock(jan1, time.Minute)
	return New(repos, WithClock(clock), WithLogger(logger)), clock
}

func ptr[T any](v T) *T { return &v }
