package main

import (
	"bytes"
	"fmt"
	"image/color"
	"image/gif"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/ampliui/st7789"
	"github.com/ampliui/st7789/internal/demo"
	"github.com/ampliui/st7789/lcdsim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

func TestSweep(t *testing.T) {
	tests := []struct {
		from, to, n int
		want        []int
	}{
		{20, 30, 3, []int{20, 25, 30}},
		{4, 0, 5, []int{4, 3, 2, 1, 0}},
		{10, 63, 1, []int{10}},
		{10, 63, 0, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sweep(tt.from, tt.to, tt.n))
	}
}

func TestSimulatorShow(t *testing.T) {
	var logs bytes.Buffer
	sim, err := newSimulator(log.New(&logs, "", 0), 512, st7789.DefaultBacklight)
	require.NoError(t, err)

	assert.Equal(t, width*height, sim.panel.Pixels())
	assert.Equal(t, color.RGBA{0, 0, 0, 0xFF}, sim.snapshot().RGBAAt(width/2, height/2))
	assert.Equal(t, st7789.DefaultBacklight, sim.bl.D)

	screen := &demo.Screen{VolumeDB: 30}
	require.NoError(t, sim.show(screen))
	first := sim.panel.Pixels()

	// The selected tab is white.
	assert.Equal(t, color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}, sim.snapshot().RGBAAt(1, 48))

	// Redrawing the same screen sends nothing.
	require.NoError(t, sim.show(screen))
	assert.Equal(t, first, sim.panel.Pixels())

	// A volume change only updates the volume area.
	screen.VolumeDB = 31
	require.NoError(t, sim.show(screen))
	assert.Less(t, sim.panel.Pixels()-first, width*height/2)

	assert.True(t, strings.Contains(logs.String(), "st7789.Dev{320x240} on lcdsim.Panel{320x240}"), logs.String())
	assert.True(t, strings.Contains(logs.String(), "volume 31 dB"), logs.String())

	require.NoError(t, sim.close())
	assert.Error(t, sim.show(screen))
}

func TestSimulatorRecord(t *testing.T) {
	sim, err := newSimulator(log.New(io.Discard, "", 0), 0, gpio.DutyMax)
	require.NoError(t, err)

	screen := &demo.Screen{}
	rec := &lcdsim.Recorder{}
	for _, v := range sweep(0, 3, 4) {
		screen.VolumeDB = v
		require.NoError(t, sim.show(screen))
		rec.Add(sim.snapshot(), 50*time.Millisecond)
	}

	var buf bytes.Buffer
	require.NoError(t, rec.Encode(&buf))
	g, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	assert.Len(t, g.Image, 4)
	assert.Equal(t, []int{5, 5, 5, 5}, g.Delay)
}

func TestBacklightDuty(t *testing.T) {
	d, err := backlightDuty(255)
	require.NoError(t, err)
	assert.Equal(t, gpio.DutyMax, d)

	d, err = backlightDuty(1)
	require.NoError(t, err)
	assert.Equal(t, gpio.DutyMax/255, d)

	for _, level := range []uint{0, 256, 1000} {
		_, err := backlightDuty(level)
		assert.EqualError(t, err, fmt.Sprintf("backlight level %d outside 1-255", level))
	}
}

func TestSimulatorValidate(t *testing.T) {
	sim, err := newSimulator(log.New(io.Discard, "", 0), 0, st7789.DefaultBacklight)
	require.NoError(t, err)
	defer sim.close()

	assert.NoError(t, sim.validate(&demo.Screen{VolumeDB: demo.MaxVolumeDB}))
	assert.NoError(t, sim.validate(&demo.Screen{}))
	assert.Error(t, sim.validate(&demo.Screen{VolumeDB: -1234567}))
	assert.Error(t, sim.validate(&demo.Screen{VolumeDB: demo.MaxVolumeDB + 1}))
	assert.Error(t, sim.validate(&demo.Screen{BalanceDB: -6}))

	labels := make([]string, 30)
	for i := range labels {
		labels[i] = fmt.Sprintf("IN %d", i)
	}
	assert.Error(t, sim.validate(&demo.Screen{Inputs: labels}))
}
