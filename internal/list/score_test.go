package list

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ip(v int) *int { return &v }

func TestComputeOverallAllNil(t *testing.T) {
	assert.Nil(t, ComputeOverall(nil, nil, nil, nil, nil))
}

func TestComputeOverallSingleAxis(t *testing.T) {
	got := ComputeOverall(nil, nil, ip(7), nil, nil)
	require.NotNil(t, got)
	assert.Equal(t, 7, *got)
}

func TestComputeOverallMean(t *testing.T) {
	// 8 story + 6 art, others unset -> mean 7
	got := ComputeOverall(ip(8), ip(6), nil, nil, nil)
	require.NotNil(t, got)
	assert.Equal(t, 7, *got)
}

func TestComputeOverallRoundsHalfAwayFromZero(t *testing.T) {
	// mean 7.5 rounds up to 8
	got := ComputeOverall(ip(7), ip(8), nil, nil, nil)
	require.NotNil(t, got)
	assert.Equal(t, 8, *got)

	// mean 8.5 rounds up to 9, not to even
	got = ComputeOverall(ip(8), ip(9), nil, nil, nil)
	require.NotNil(t, got)
	assert.Equal(t, 9, *got)
}

func TestComputeOverallAllFiveAxes(t *testing.T) {
	cases := []struct {
		name   string
		scores [5]int
		want   int
	}{
		{"uniform", [5]int{5, 5, 5, 5, 5}, 5},
		{"mixed", [5]int{10, 9, 8, 7, 6}, 8},
		{"rounds down", [5]int{1, 1, 1, 1, 2}, 1}, // 1.2
		{"rounds up", [5]int{9, 9, 9, 9, 10}, 9},  // 9.2
		{"extremes", [5]int{1, 10, 1, 10, 1}, 5},  // 4.6
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeOverall(ip(tc.scores[0]), ip(tc.scores[1]), ip(tc.scores[2]), ip(tc.scores[3]), ip(tc.scores[4]))
			require.NotNil(t, got)
			assert.Equal(t, tc.want, *got)
		})
	}
}
