package machina

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParameterInRange(t *testing.T) {
	tests := []struct {
		name  string
		param Parameter
		want  bool
	}{
		{"inside range", Parameter{MinValue: 1, MaxValue: 10, MeasuredValue: 5}, true},
		{"at lower bound", Parameter{MinValue: 1, MaxValue: 10, MeasuredValue: 1}, true},
		{"at upper bound", Parameter{MinValue: 1, MaxValue: 10, MeasuredValue: 10}, true},
		{"below range", Parameter{MinValue: 1, MaxValue: 10, MeasuredValue: 0.5}, false},
		{"above range", Parameter{MinValue: 1, MaxValue: 10, MeasuredValue: 10.1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.param.InRange())
		})
	}
}

func TestComponentEnums(t *testing.T) {
	assert.True(t, ComponentStatusCorrected.Valid())
	assert.True(t, ComponentStatusPending.Valid())
	assert.False(t, ComponentStatus("fixed").Valid())

	assert.True(t, PriorityLow.Valid())
	assert.True(t, PriorityMedium.Valid())
	assert.True(t, PriorityHigh.Valid())
	assert.False(t, Priority("urgent").Valid())
}
