package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes[float32](nil))
	assert.Nil(t, SliceToBytes([]float32{}))

	b := SliceToBytes([]float32{1, 2, 3})
	assert.Equal(t, 12, len(b))

	b = SliceToBytes([]uint32{0xdeadbeef})
	assert.Equal(t, 4, len(b))
}

func TestStructToBytes(t *testing.T) {
	type params struct {
		A [4]float32
		B [4]float32
	}
	v := params{}
	b := StructToBytes(&v)
	assert.Equal(t, 32, len(b))
}

func TestMipLevels(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		maxLevels     int
		want          int
	}{
		{name: "1080p capped at 8", width: 1920, height: 1080, maxLevels: 8, want: 8},
		{name: "small uncapped", width: 64, height: 32, maxLevels: 8, want: 6},
		{name: "longest side wins", width: 16, height: 256, maxLevels: 8, want: 8},
		{name: "single pixel", width: 1, height: 1, maxLevels: 8, want: 1},
		{name: "non power of two rounds up", width: 100, height: 50, maxLevels: 16, want: 7},
		{name: "zero width", width: 0, height: 100, maxLevels: 8, want: 7},
		{name: "zero dims", width: 0, height: 0, maxLevels: 8, want: 0},
		{name: "zero cap", width: 512, height: 512, maxLevels: 0, want: 0},
		{name: "cap of one", width: 512, height: 512, maxLevels: 1, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MipLevels(tt.width, tt.height, tt.maxLevels))
		})
	}
}
