package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDevices(t *testing.T) {
	devices, err := ParseDevices("serial1\tdevice\nserial2\toffline\n")
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, Device{ID: "serial1", Type: TypeDevice}, devices[0])
	assert.Equal(t, Device{ID: "serial2", Type: TypeOffline}, devices[1])
}

func TestParseDevicesEmpty(t *testing.T) {
	devices, err := ParseDevices("")
	require.NoError(t, err)
	assert.Empty(t, devices)

	devices, err = ParseDevices("\n\n")
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func TestParseDevicesUnknownTypePreserved(t *testing.T) {
	devices, err := ParseDevices("serial1\tsideload\n")
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, DeviceType("sideload"), devices[0].Type)
}

func TestParseDevicesMalformed(t *testing.T) {
	_, err := ParseDevices("loneserial\n")
	assert.Error(t, err)
}

func TestParseDevicesWithPaths(t *testing.T) {
	devices, err := ParseDevicesWithPaths(
		"serial1\tdevice\tusb:1-1.2 product:bullhead model:Nexus_5X device:bullhead transport_id:1\n")
	require.NoError(t, err)
	require.Len(t, devices, 1)

	device := devices[0]
	assert.Equal(t, "serial1", device.ID)
	assert.Equal(t, TypeDevice, device.Type)
	assert.Equal(t, "usb:1-1.2", device.Path)
	assert.Equal(t, "bullhead", device.Product)
	assert.Equal(t, "Nexus_5X", device.Model)
	assert.Equal(t, "bullhead", device.Device)
	assert.Equal(t, "1", device.TransportID)
}

func TestParseDevicesWithPathsSpaceSeparated(t *testing.T) {
	// 某些服务器版本在类型和键值对之间用空格
	devices, err := ParseDevicesWithPaths("serial1\tdevice product:sdk model:Emulator transport_id:2\n")
	require.NoError(t, err)
	require.Len(t, devices, 1)

	device := devices[0]
	assert.Equal(t, TypeDevice, device.Type)
	assert.Equal(t, "sdk", device.Product)
	assert.Equal(t, "2", device.TransportID)
}

func TestParseDevicesWithPathsNoExtras(t *testing.T) {
	devices, err := ParseDevicesWithPaths("serial1\tunauthorized\n")
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, TypeUnauthorized, devices[0].Type)
	assert.Empty(t, devices[0].Path)
}
