package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JimmyVaras/ros-web-app/internal/errors"
)

func TestParseFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		arg     string
		want    float64
		wantErr bool
	}{
		{arg: "1.5", want: 1.5},
		{arg: "-0.25", want: -0.25},
		{arg: "1e3", want: 1000},
		{arg: "abc", wantErr: true},
		{arg: "NaN", wantErr: true},
		{arg: "nan", wantErr: true},
		{arg: "Inf", wantErr: true},
		{arg: "-Infinity", wantErr: true},
		{arg: "1e400", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.arg, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFloat("x", tt.arg)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseID(t *testing.T) {
	t.Parallel()

	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, arg := range []string{"0", "-1", "x", ""} {
		_, err := ParseID(arg)
		require.Error(t, err, arg)
		assert.True(t, errors.IsValidation(err), arg)
	}
}
