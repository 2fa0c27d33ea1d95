package pkg

import (
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simp-lee/dating/internal/domain"
)

func TestParamID(t *testing.T) {
	tests := []struct {
		raw     string
		want    uint
		wantErr bool
	}{
		{"1", 1, false},
		{"42", 42, false},
		{"0", 0, true},
		{"-3", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Params = gin.Params{{Key: "id", Value: tt.raw}}

			got, err := ParamID(c, "id")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, domain.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapPage(t *testing.T) {
	p := &domain.Page[int]{Items: []int{1, 2}, CurrentPage: 2, ItemsPerPage: 2, TotalItems: 4, TotalPages: 2}

	got := MapPage(p, strconv.Itoa)
	assert.Equal(t, []string{"1", "2"}, got.Items)
	assert.Equal(t, p.Meta(), got.Meta())

	empty := MapPage(&domain.Page[int]{}, strconv.Itoa)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)
}
