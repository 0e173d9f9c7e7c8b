package reftable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTablesDecode(t *testing.T) {
	require.NoError(t, Err())
	assert.NotEmpty(t, Institutions())
	assert.NotEmpty(t, Profilers())
}

func TestInstitution(t *testing.T) {
	assert.Equal(t, "AOML, USA", Institution("AO"))
	assert.Equal(t, "Ifremer, France", Institution(" IF "))
	assert.Equal(t, Unknown, Institution("XX"))
	assert.Equal(t, Unknown, Institution(""))
}

func TestProfiler(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"846", "Webb Research, Seabird sensor"},
		{"844.0", "Arvor, Seabird conductivity sensor"},
		{"?", "?"},
		{"999", Unknown},
		{"abc", Unknown},
		{"846.5", Unknown},
		{"", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, Profiler(tt.code))
		})
	}
}

func TestCopiesAreIndependent(t *testing.T) {
	m := Institutions()
	m["AO"] = "changed"
	assert.Equal(t, "AOML, USA", Institution("AO"))
}
