package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bookkeeper/internal/filter"
)

// seedEntries stores one entry per day of January 2024, noted on odd days.
func seedEntries(t *testing.T, repo *Repository[Entry]) []Entry {
	t.Helper()
	ctx := context.Background()

	var out []Entry
	for day := 1; day <= 5; day++ {
		e := Entry{
			Amount: float64(day) * 10,
			Label:  []string{"food", "rent", "food", "fun", "food"}[day-1],
			At:     time.Date(2024, 1, day, 9, 0, 0, 0, time.UTC),
			Done:   day%2 == 0,
		}
		if day%2 == 1 {
			e.Note = ptr("odd")
		}
		_, err := repo.Add(ctx, &e)
		require.NoError(t, err)
		out = append(out, e)
	}
	return out
}

func keysOf(entries []Entry) []int64 {
	keys := make([]int64, len(entries))
	for i, e := range entries {
		keys[i] = e.PK
	}
	return keys
}

func TestGet_Absent(t *testing.T) {
	forEachDriver(t, func(t *testing.T, st *Store) {
		repo := createTestRepo[Custom](t, st)

		got, err := repo.Get(context.Background(), 7)
		assert.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestGet_TimestampsComeBackInUTC(t *testing.T) {
	forEachDriver(t, func(t *testing.T, st *Store) {
		ctx := context.Background()
		repo := createTestRepo[Entry](t, st)

		zone := time.FixedZone("EST", -5*60*60)
		at := time.Date(2024, 6, 1, 20, 30, 0, 0, zone)
		in := Entry{Label: "late", At: at}
		_, err := repo.Add(ctx, &in)
		require.NoError(t, err)

		got, err := repo.Get(ctx, in.PK)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.At.Equal(at))
		assert.Equal(t, time.UTC, got.At.Location())
		assert.NotEqual(t, in, *got)

		in.At = in.At.UTC()
		assert.Equal(t, in, *got)

		all, err := repo.GetAll(ctx, nil)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, time.UTC, all[0].At.Location())
		assert.True(t, all[0].At.Equal(at))
	})
}

func TestGetAll_EmptyTable(t *testing.T) {
	repo := createTestRepo[Custom](t, createTestStore(t, Options{}))

	all, err := repo.GetAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetAll_TypedFilters(t *testing.T) {
	forEachDriver(t, func(t *testing.T, st *Store) {
		ctx := context.Background()
		repo := createTestRepo[Entry](t, st)
		seedEntries(t, repo)

		tests := []struct {
			name  string
			where filter.Predicate
			want  []int64
		}{
			{"nil", nil, []int64{1, 2, 3, 4, 5}},
			{"equals text", filter.Eq("label", "food"), []int64{1, 3, 5}},
			{"equals bool", filter.Eq("done", true), []int64{2, 4}},
			{"equals key", filter.Eq("pk", int64(4)), []int64{4}},
			{"greater real", filter.Cmp("amount", filter.OpGreater, 25.0), []int64{3, 4, 5}},
			{"not equal", filter.Cmp("label", filter.OpNotEq, "food"), []int64{2, 4}},
			{"null", filter.Null("note"), []int64{2, 4}},
			{
				"time window",
				filter.All(
					filter.Cmp("at", filter.OpGreater, time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)),
					filter.Cmp("at", filter.OpLessEq, time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC)),
				),
				[]int64{3, 4},
			},
			{"empty and", filter.All(), []int64{1, 2, 3, 4, 5}},
			{"no match", filter.Eq("label", "travel"), []int64{}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := repo.GetAll(ctx, tt.where)
				require.NoError(t, err)
				assert.Equal(t, tt.want, keysOf(got))
			})
		}
	})
}

func TestGetAll_UnknownColumn(t *testing.T) {
	repo := createTestRepo[Entry](t, createTestStore(t, Options{}))

	_, err := repo.GetAll(context.Background(), filter.Eq("nope", 1))
	assert.ErrorIs(t, err, filter.ErrUnknownColumn)
	assert.Contains(t, err.Error(), "get all entry")
}

func TestGetAll_RawClause(t *testing.T) {
	forEachDriver(t, func(t *testing.T, st *Store) {
		ctx := context.Background()
		repo := createTestRepo[Entry](t, st)
		seedEntries(t, repo)

		tests := []struct {
			name  string
			where filter.Raw
			want  []int64
		}{
			{"literal", filter.Clause("WHERE label = 'rent'"), []int64{2}},
			{"bound args", filter.Clause("WHERE amount >= ? AND label = ?", 20, "food"), []int64{3, 5}},
			{"own ordering", filter.Clause("WHERE done = ? ORDER BY pk DESC", true), []int64{4, 2}},
			{"time literal", filter.Clause("WHERE at > '2024-01-04'"), []int64{4, 5}},
			{"time arg", filter.Clause("WHERE at <= ?", time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)), []int64{1, 2}},
			{
				"sub-select",
				filter.Clause("WHERE at = (SELECT MAX(at) FROM entry WHERE label = ?)", "food"),
				[]int64{5},
			},
			{"limit", filter.Clause("ORDER BY amount DESC LIMIT 2"), []int64{5, 4}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got, err := repo.GetAll(ctx, tt.where)
				require.NoError(t, err)
				assert.Equal(t, tt.want, keysOf(got))
			})
		}
	})
}

func TestGetAll_MalformedRawClause(t *testing.T) {
	forEachDriver(t, func(t *testing.T, st *Store) {
		repo := createTestRepo[Entry](t, st)

		_, err := repo.GetAll(context.Background(), filter.Clause("WHERE label =="))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "get all entry")
	})
}

func TestGetAll_InjectionAsValueMatchesLiterally(t *testing.T) {
	ctx := context.Background()
	repo := createTestRepo[Entry](t, createTestStore(t, Options{}))
	seedEntries(t, repo)

	got, err := repo.GetAll(ctx, filter.Eq("label", "food' OR '1'='1"))
	require.NoError(t, err)
	assert.Empty(t, got)

	all, err := repo.GetAll(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestGetAll_ReturnsInsertionOrderAfterUpdates(t *testing.T) {
	ctx := context.Background()
	repo := createTestRepo[Entry](t, createTestStore(t, Options{}))
	entries := seedEntries(t, repo)

	first := entries[0]
	first.Amount = 999
	require.NoError(t, repo.Update(ctx, &first))

	all, err := repo.GetAll(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, keysOf(all))
	assert.Equal(t, 999.0, all[0].Amount)
	assert.Equal(t, entries[1:], all[1:])
}
