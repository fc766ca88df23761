package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetVersion(t *testing.T) {
	tests := []struct {
		name    string
		stamped string
		want    string
	}{
		{"default", DevVersion, DevVersion},
		{"release", "1.4.0", "1.4.0"},
		{"v prefix", "v2.0.1", "2.0.1"},
		{"prerelease", "1.0.0-rc.1", "1.0.0-rc.1"},
		{"garbage", "not-a-version", DevVersion},
		{"empty", "", DevVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := version
			version = tt.stamped
			t.Cleanup(func() { version = prev })
			assert.Equal(t, tt.want, GetVersion())
		})
	}
}

func TestParse(t *testing.T) {
	v, err := Parse(" v1.2.3 ")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v.Major())
	assert.Equal(t, uint64(2), v.Minor())

	_, err = Parse("one.two")
	require.Error(t, err)
}

func TestIsRelease(t *testing.T) {
	assert.True(t, IsRelease("1.2.3"))
	assert.False(t, IsRelease("1.2.3-dev"))
	assert.False(t, IsRelease(DevVersion))
	assert.False(t, IsRelease("nope"))
}
