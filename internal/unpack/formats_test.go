package unpack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsArchiveName(t *testing.T) {
	cases := []struct {
		name string
		want bool
	}{
		{"backup.zip", true},
		{"photos.RAR", true},
		{"data.tar.gz", true},
		{"big.7z.001", true},
		{"big.7z.002", true},
		{"split.z01", true},
		{"report.pdf", false},
		{"video.mp4", false},
		{"noext", false},
		{"trailingdot.", false},
		{"notes.001", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsArchiveName(tc.name))
		})
	}
}

func TestIsFirstVolume(t *testing.T) {
	assert.True(t, IsFirstVolume("big.7z.001"))
	assert.True(t, IsFirstVolume("split.z01"))
	assert.True(t, IsFirstVolume("big.part1.rar"))
	assert.True(t, IsFirstVolume("big.part01.rar"))
	assert.False(t, IsFirstVolume("big.7z.002"))
	assert.False(t, IsFirstVolume("big.part2.rar"))
	assert.False(t, IsFirstVolume("big.part10.rar"))
	assert.False(t, IsFirstVolume("backup.zip"))
}
