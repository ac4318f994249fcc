package hosttransport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeSafeArgsUntouched(t *testing.T) {
	for _, arg := range []string{"ls", "-l", "/data/local/tmp", "a.b_c+d,e:f@g%h=i-j", "123"} {
		assert.Equal(t, arg, Escape(arg))
	}
}

func TestEscapeEmpty(t *testing.T) {
	assert.Equal(t, "''", Escape(""))
}

func TestEscapeWrapsUnsafeArgs(t *testing.T) {
	assert.Equal(t, "'hello world'", Escape("hello world"))
	assert.Equal(t, "'$(reboot)'", Escape("$(reboot)"))
	assert.Equal(t, "'a;b'", Escape("a;b"))
	assert.Equal(t, "'日本語'", Escape("日本語"))
}

func TestEscapeSingleQuotes(t *testing.T) {
	assert.Equal(t, `'it'"'"'s'`, Escape("it's"))
	assert.Equal(t, `''"'"''`, Escape("'"))
}

func TestEscapeAll(t *testing.T) {
	assert.Equal(t, "echo 'hello world' ''", EscapeAll([]string{"echo", "hello world", ""}))
}
