package playback

import (
	"fmt"
	"math"
)

// Resampler 在不同采样率之间转换 int16 PCM
// 用于输出设备不支持音轨采样率的情况
type Resampler interface {
	Resample(input []int16, inputRate, outputRate, channels int) ([]int16, error)
}

// LinearResampler 线性插值重采样器
//
//	position = outFrame * inputRate / outputRate
//	out = in[i]*(1-frac) + in[i+1]*frac
type LinearResampler struct{}

func NewLinearResampler() *LinearResampler {
	return &LinearResampler{}
}

func (r *LinearResampler) Resample(input []int16, inputRate, outputRate, channels int) ([]int16, error) {
	if inputRate <= 0 || outputRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: input=%d, output=%d", inputRate, outputRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("invalid channels: %d", channels)
	}

	inputFrames := len(input) / channels
	if inputFrames == 0 {
		return []int16{}, nil
	}
	if inputRate == outputRate {
		out := make([]int16, len(input))
		copy(out, input)
		return out, nil
	}

	ratio := float64(inputRate) / float64(outputRate)
	outputFrames := int(math.Ceil(float64(inputFrames) / ratio))
	output := make([]int16, outputFrames*channels)

	last := inputFrames - 1
	for outFrame := 0; outFrame < outputFrames; outFrame++ {
		position := float64(outFrame) * ratio
		inFrame := int(position)
		frac := position - float64(inFrame)
		if inFrame >= last {
			inFrame = last
			frac = 0
		}
		next := inFrame + 1
		if next > last {
			next = last
		}

		for ch := 0; ch < channels; ch++ {
			s1 := float64(input[inFrame*channels+ch])
			s2 := float64(input[next*channels+ch])
			v := s1*(1-frac) + s2*frac
			if v > math.MaxInt16 {
				v = math.MaxInt16
			} else if v < math.MinInt16 {
				v = math.MinInt16
			}
			output[outFrame*channels+ch] = int16(v)
		}
	}

	return output, nil
}
