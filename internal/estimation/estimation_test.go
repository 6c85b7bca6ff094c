package estimation_test

import (
	"testing"

	"github.com/stitchup/stitchup/internal/estimation"
	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name       string
		queueDepth int
		avgMins    int
		want       int
	}{
		{name: "empty queue", queueDepth: 0, avgMins: 20, want: 20},
		{name: "one ahead", queueDepth: 1, avgMins: 20, want: 40},
		{name: "three ahead", queueDepth: 3, avgMins: 30, want: 120},
		{name: "heavy work", queueDepth: 2, avgMins: 120, want: 360},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, estimation.Estimate(tt.queueDepth, tt.avgMins))
		})
	}
}
