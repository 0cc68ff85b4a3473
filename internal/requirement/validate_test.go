package requirement

import (
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequirement(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"0", "0", false},
		{" 42 ", "42", false},
		{"12,5", "12,5", false},
		{"99.99", "99.99", false},
		{"100", "100", false},
		{"", "", true},
		{"abc", "", true},
		{"-1", "", true},
		{"100.01", "", true},
		{"12345678", "", true},
		{"NaN", "", true},
		{"1,2,3", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ValidateRequirement(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, eris.Is(err, ErrInvalidRequirement))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
