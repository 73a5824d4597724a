package tone

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-audio/audio"
)

// Synthesizer 正弦音合成器接口
type Synthesizer interface {
	// SynthesizeSeconds 生成 seconds 秒、频率 freq、幅度 amplitude (0-1) 的单声道样本
	SynthesizeSeconds(freq, amplitude float64, seconds int) (*audio.IntBuffer, error)
}

var ErrUnsupportedBitDepth = errors.New("unsupported bit depth")

// CycleSynthesizer 按整周期拼接的正弦合成器
// 一个周期长度为 floor(sampleRate/freq) 个样本，重复整周期直到不少于
// sampleRate*seconds 个样本。每次调用都从相位 0 开始，输出是确定的。
type CycleSynthesizer struct {
	sampleRate int
	bitDepth   int
}

func NewCycleSynthesizer(sampleRate, bitDepth int) *CycleSynthesizer {
	return &CycleSynthesizer{
		sampleRate: sampleRate,
		bitDepth:   bitDepth,
	}
}

func (s *CycleSynthesizer) SynthesizeSeconds(freq, amplitude float64, seconds int) (*audio.IntBuffer, error) {
	if s.sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", s.sampleRate)
	}
	fullScale, err := fullScale(s.bitDepth)
	if err != nil {
		return nil, err
	}
	if freq <= 0 || math.IsNaN(freq) || math.IsInf(freq, 0) {
		return nil, fmt.Errorf("invalid frequency: %v", freq)
	}
	if freq*2 >= float64(s.sampleRate) {
		return nil, fmt.Errorf("frequency %v Hz must be below half the sample rate (%d Hz)", freq, s.sampleRate)
	}
	if amplitude < 0 || amplitude > 1 || math.IsNaN(amplitude) {
		return nil, fmt.Errorf("invalid amplitude: %v", amplitude)
	}
	if seconds <= 0 {
		return nil, fmt.Errorf("invalid duration: %d seconds", seconds)
	}

	period := int(float64(s.sampleRate) / freq)
	want := s.sampleRate * seconds
	cycles := (want + period - 1) / period

	cycle := make([]int, period)
	for i := range cycle {
		v := amplitude * float64(fullScale) * math.Sin(2*math.Pi*float64(i)/float64(period))
		cycle[i] = int(math.Round(v))
	}

	data := make([]int, 0, cycles*period)
	for c := 0; c < cycles; c++ {
		data = append(data, cycle...)
	}

	return &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  s.sampleRate,
		},
		Data:           data,
		SourceBitDepth: s.bitDepth,
	}, nil
}

// fullScale 返回有符号样本的最大值
func fullScale(bitDepth int) (int, error) {
	switch bitDepth {
	case 8, 16:
		return 1<<(bitDepth-1) - 1, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
}
