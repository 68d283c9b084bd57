package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "plain bytes", input: "1024", want: 1024},
		{name: "zero bytes", input: "0", want: 0},
		{name: "bytes with B suffix", input: "512B", want: 512},
		{name: "kilobytes", input: "100K", want: 100 * 1024},
		{name: "kilobytes with iB", input: "100KiB", want: 100 * 1024},
		{name: "megabytes lowercase", input: "10mb", want: 10 * 1024 * 1024},
		{name: "gigabytes", input: "2G", want: 2 * 1024 * 1024 * 1024},
		{name: "terabytes", input: "1TB", want: 1024 * 1024 * 1024 * 1024},
		{name: "surrounding whitespace", input: "  16M  ", want: 16 * 1024 * 1024},
		{name: "decimal values truncated", input: "1.5G", want: 1610612736},

		{name: "empty string", input: "", wantErr: true},
		{name: "invalid suffix", input: "100X", wantErr: true},
		{name: "negative value", input: "-100M", wantErr: true},
		{name: "suffix only", input: "M", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSize(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSize_ErrorKinds(t *testing.T) {
	_, err := ParseSize("-1K")
	assert.ErrorIs(t, err, ErrNegativeSize)

	_, err = ParseSize("lots")
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{50, "50 B"},
		{1024, "1.0 KiB"},
		{64 * KiB, "64 KiB"},
		{16 * GiB, "16 GiB"},
		{-2048, "-2.0 KiB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.bytes), "FormatSize(%d)", tt.bytes)
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "read", OutcomeRead.String())
	assert.Equal(t, "skipped", OutcomeSkipped.String())
	assert.Equal(t, "seek_failed", OutcomeSeekFailed.String())
	assert.Equal(t, "read_failed", OutcomeReadFailed.String())
	assert.Equal(t, "unknown", Outcome(42).String())
}

func TestVisitFailed(t *testing.T) {
	assert.False(t, Visit{Outcome: OutcomeRead}.Failed())
	assert.False(t, Visit{Outcome: OutcomeSkipped}.Failed())
	assert.True(t, Visit{Outcome: OutcomeSeekFailed, Err: errors.New("x")}.Failed())
	assert.True(t, Visit{Outcome: OutcomeReadFailed, Err: errors.New("x")}.Failed())
}

func TestDeviceInfoOK(t *testing.T) {
	assert.True(t, DeviceInfo{Path: "/dev/sda", Size: 1}.OK())
	assert.False(t, DeviceInfo{Path: "/dev/sdz", Error: "no such file"}.OK())
}
