package proc

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statFirst = `cpu  100 0 100 800 0 0 0 0 0 0
cpu0 50 0 50 400 0 0 0 0 0 0
intr 12345
ctxt 6789
`

const statSecond = `cpu  150 0 150 850 0 0 0 0 0 0
cpu0 75 0 75 425 0 0 0 0 0 0
intr 12346
ctxt 6790
`

func TestParseStat(t *testing.T) {
	stats, err := parseStat(strings.NewReader(statFirst))
	require.NoError(t, err)
	require.Len(t, stats, 2)

	cpu := stats["cpu"]
	assert.Equal(t, uint64(100), cpu.User)
	assert.Equal(t, uint64(100), cpu.System)
	assert.Equal(t, uint64(800), cpu.Idle)
	assert.Equal(t, uint64(1000), cpu.Total)

	assert.Equal(t, uint64(500), stats["cpu0"].Total)
}

func TestParseStatMalformed(t *testing.T) {
	_, err := parseStat(strings.NewReader("cpu abc def\n"))
	assert.Error(t, err)
}

func TestLoadsBetweenReadings(t *testing.T) {
	readings := []string{statFirst, statSecond}
	index := 0

	monitor := New(func() (io.ReadCloser, error) {
		reading := readings[index]
		if index < len(readings)-1 {
			index++
		}
		return io.NopCloser(strings.NewReader(reading)), nil
	})

	loads := make(chan map[string]*CPULoad, 1)
	monitor.OnLoad = func(data map[string]*CPULoad) {
		select {
		case loads <- data:
		default:
		}
	}
	monitor.SetInterval(10 * time.Millisecond)
	monitor.Start()
	defer monitor.End()

	select {
	case data := <-loads:
		cpu := data["cpu"]
		require.NotNil(t, cpu)
		// 两次读数之间共150个tick：user、system、idle各50，各占三分之一（整数除法得33）
		assert.Equal(t, 33, cpu.User)
		assert.Equal(t, 33, cpu.System)
		assert.Equal(t, 33, cpu.Idle)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for load report")
	}
}

func TestMonitorStopsOnSourceError(t *testing.T) {
	monitor := New(func() (io.ReadCloser, error) {
		return nil, io.ErrUnexpectedEOF
	})

	errs := make(chan error, 1)
	monitor.OnError = func(err error) { errs <- err }
	monitor.Start()
	defer monitor.End()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for error")
	}
}
