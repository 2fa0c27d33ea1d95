package query

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simp-lee/dating/internal/domain"
)

func ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestRun_LastPartialPage(t *testing.T) {
	page, err := Run(ints(12), Plan[int]{PageNumber: 3, PageSize: 5})
	require.NoError(t, err)

	assert.Equal(t, []int{11, 12}, page.Items)
	assert.Equal(t, 3, page.TotalPages)
	assert.EqualValues(t, 12, page.TotalItems)
	assert.Equal(t, 3, page.CurrentPage)
	assert.Equal(t, 5, page.ItemsPerPage)
}

func TestRun_PageBounds(t *testing.T) {
	tests := []struct {
		name       string
		n          int
		pageNumber int
		pageSize   int
		wantLen    int
		wantPages  int
	}{
		{"first page", 12, 1, 5, 5, 3},
		{"exact multiple", 10, 2, 5, 5, 2},
		{"beyond end", 12, 4, 5, 0, 3},
		{"far beyond end", 12, 1000, 5, 0, 3},
		{"empty set", 0, 1, 5, 0, 0},
		{"page size one", 3, 3, 1, 1, 3},
		{"page larger than set", 3, 1, 50, 3, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := Run(ints(tt.n), Plan[int]{PageNumber: tt.pageNumber, PageSize: tt.pageSize})
			require.NoError(t, err)
			assert.Len(t, page.Items, tt.wantLen)
			assert.LessOrEqual(t, len(page.Items), tt.pageSize)
			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.EqualValues(t, tt.n, page.TotalItems)
			assert.NotNil(t, page.Items)
		})
	}
}

func TestRun_InvalidArguments(t *testing.T) {
	tests := []struct {
		name       string
		pageNumber int
		pageSize   int
	}{
		{"page zero", 0, 5},
		{"negative page", -1, 5},
		{"size zero", 1, 0},
		{"negative size", 1, -3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(ints(3), Plan[int]{PageNumber: tt.pageNumber, PageSize: tt.pageSize})
			require.Error(t, err)
			assert.True(t, domain.IsInvalidArgument(err), "got %v", err)
		})
	}

	_, err := Run(ints(3), Plan[int]{PageNumber: 1, PageSize: 5})
	assert.NoError(t, err)
}

func TestRun_TotalIndependentOfPaging(t *testing.T) {
	even := func(v int) bool { return v%2 == 0 }
	for _, size := range []int{1, 3, 7, 50} {
		for pageNumber := 1; pageNumber <= 4; pageNumber++ {
			page, err := Run(ints(21), Plan[int]{
				Filters:    []Predicate[int]{even},
				PageNumber: pageNumber,
				PageSize:   size,
			})
			require.NoError(t, err)
			assert.EqualValues(t, 10, page.TotalItems)
			assert.Equal(t, (10+size-1)/size, page.TotalPages)
		}
	}
}

func TestRun_FiltersAreConjunctive(t *testing.T) {
	page, err := Run(ints(30), Plan[int]{
		Filters: []Predicate[int]{
			func(v int) bool { return v%2 == 0 },
			func(v int) bool { return v%3 == 0 },
		},
		PageNumber: 1,
		PageSize:   10,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{6, 12, 18, 24, 30}, page.Items)
}

type stamped struct {
	ID uint
	At time.Time
}

func TestRun_SortsDescendingWithoutMutatingInput(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []stamped{
		{ID: 1, At: base.Add(1 * time.Hour)},
		{ID: 2, At: base.Add(3 * time.Hour)},
		{ID: 3, At: base.Add(2 * time.Hour)},
		{ID: 4, At: base.Add(3 * time.Hour)},
	}
	snapshot := append([]stamped(nil), records...)

	plan := Plan[stamped]{
		Compare:    Descending(func(s stamped) time.Time { return s.At }, func(s stamped) uint { return s.ID }),
		PageNumber: 1,
		PageSize:   10,
	}
	first, err := Run(records, plan)
	require.NoError(t, err)

	ids := make([]uint, 0, len(first.Items))
	for _, s := range first.Items {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []uint{4, 2, 3, 1}, ids)
	assert.Equal(t, snapshot, records, "input must not be reordered")

	second, err := Run(records, plan)
	require.NoError(t, err)
	assert.Equal(t, first, second, "identical input must give identical output")
}

func TestNewPage(t *testing.T) {
	p := NewPage[int](nil, 0, 1, 10)
	assert.NotNil(t, p.Items)
	assert.Equal(t, 0, p.TotalPages)

	p = NewPage([]int{1}, 11, 2, 10)
	assert.Equal(t, 2, p.TotalPages)
	assert.Equal(t, 2, p.CurrentPage)
}

func TestValidatePage(t *testing.T) {
	assert.NoError(t, ValidatePage(1, 1))
	assert.True(t, domain.IsInvalidArgument(ValidatePage(0, 1)))
	assert.True(t, domain.IsInvalidArgument(ValidatePage(1, 0)))
}

func TestRun_ExtremePageValues(t *testing.T) {
	t.Run("page size near max int", func(t *testing.T) {
		page, err := Run(ints(12), Plan[int]{PageNumber: 1, PageSize: math.MaxInt})
		require.NoError(t, err)
		assert.Equal(t, ints(12), page.Items)
		assert.EqualValues(t, 12, page.TotalItems)
		assert.Equal(t, 1, page.TotalPages)
	})

	t.Run("second page of an oversized page", func(t *testing.T) {
		page, err := Run(ints(12), Plan[int]{PageNumber: 2, PageSize: math.MaxInt})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, 1, page.TotalPages)
	})

	t.Run("page number far past the end", func(t *testing.T) {
		page, err := Run(ints(5), Plan[int]{PageNumber: 1<<62 + 1, PageSize: 4})
		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.EqualValues(t, 5, page.TotalItems)
		assert.Equal(t, 2, page.TotalPages)
	})
}

func TestLastPage(t *testing.T) {
	tests := []struct {
		total    int64
		pageSize int
		want     int64
	}{
		{0, 5, 0},
		{12, 5, 3},
		{10, 5, 2},
		{1, 1, 1},
		{12, math.MaxInt, 1},
		{math.MaxInt64, math.MaxInt, 1},
		{math.MaxInt64, 2, math.MaxInt64/2 + 1},
		{3, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LastPage(tt.total, tt.pageSize), "LastPage(%d, %d)", tt.total, tt.pageSize)
	}
}

func TestHasPage(t *testing.T) {
	assert.True(t, HasPage(1, 4, 5))
	assert.True(t, HasPage(2, 4, 5))
	assert.False(t, HasPage(3, 4, 5))
	assert.False(t, HasPage(1<<62+1, 4, 5))
	assert.False(t, HasPage(1, 10, 0))
	assert.False(t, HasPage(0, 10, 5))
}

func TestRun_Idempotent(t *testing.T) {
	records := []stamped{
		{ID: 1, At: time.Unix(100, 0)},
		{ID: 2, At: time.Unix(300, 0)},
		{ID: 3, At: time.Unix(300, 0)},
		{ID: 4, At: time.Unix(200, 0)},
		{ID: 5, At: time.Unix(50, 0)},
	}
	plan := Plan[stamped]{
		Filters:    []Predicate[stamped]{func(s stamped) bool { return s.ID != 4 }},
		Compare:    Descending(func(s stamped) time.Time { return s.At }, func(s stamped) uint { return s.ID }),
		PageNumber: 1,
		PageSize:   3,
	}

	first, err := Run(records, plan)
	require.NoError(t, err)
	second, err := Run(records, plan)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, first.TotalPages)
}
