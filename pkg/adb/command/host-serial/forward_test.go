package hostserial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseForwards(t *testing.T) {
	forwards, err := ParseForwards("abc123 tcp:8080 tcp:80\nabc123 tcp:9000 localabstract:chrome\n")
	require.NoError(t, err)
	require.Len(t, forwards, 2)

	assert.Equal(t, Forward{Serial: "abc123", Local: "tcp:8080", Remote: "tcp:80"}, forwards[0])
	assert.Equal(t, Forward{Serial: "abc123", Local: "tcp:9000", Remote: "localabstract:chrome"}, forwards[1])
}

func TestParseForwardsEmpty(t *testing.T) {
	forwards, err := ParseForwards("")
	require.NoError(t, err)
	assert.Empty(t, forwards)
}

func TestParseForwardsMalformed(t *testing.T) {
	_, err := ParseForwards("abc123 tcp:8080\n")
	assert.Error(t, err)
}
