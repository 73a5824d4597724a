package tone

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-audio/wav"
)

var ErrInvalidWAV = errors.New("not a valid WAV file")

// Info 是从 WAV 头部读出的信息
type Info struct {
	SampleRate      int
	Channels        int
	BitDepth        int
	DeclaredSamples int
	Duration        time.Duration
}

// Inspect 解码 WAV 头部，返回头部声明的格式与样本数
func Inspect(r io.ReadSeeker) (*Info, error) {
	d := wav.NewDecoder(r)
	d.ReadInfo()
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("read WAV info: %w", err)
	}
	if !d.IsValidFile() {
		return nil, ErrInvalidWAV
	}
	if err := d.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("locate data chunk: %w", err)
	}

	info := &Info{
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
	}
	frameSize := info.Channels * info.BitDepth / 8
	if frameSize == 0 || info.SampleRate <= 0 {
		return nil, ErrInvalidWAV
	}
	info.DeclaredSamples = d.PCMSize / frameSize
	info.Duration = time.Duration(info.DeclaredSamples) * time.Second / time.Duration(info.SampleRate)
	return info, nil
}
