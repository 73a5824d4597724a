package tone

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/liuscraft/tonegen/internal/logging"
)

// Params 描述一次生成任务
type Params struct {
	Seconds    int
	Frequency  float64
	Amplitude  float64
	SampleRate int
}

// Track 组装结果：头部 + 按秒顺序拼接的样本
type Track struct {
	Header          []byte
	Samples         *audio.IntBuffer
	DeclaredSamples int
	BitDepth        int
}

// Assembler 把逐秒合成的样本拼接成完整音轨并生成 WAV 头
type Assembler struct {
	synth    Synthesizer
	header   HeaderBuilder
	bitDepth int
}

func NewAssembler(synth Synthesizer, header HeaderBuilder, bitDepth int) *Assembler {
	return &Assembler{
		synth:    synth,
		header:   header,
		bitDepth: bitDepth,
	}
}

// Assemble 生成 p.Seconds 个一秒片段，第 i 秒总是在第 i+1 秒之前
func (a *Assembler) Assemble(ctx context.Context, p Params) (*Track, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if p.Seconds <= 0 {
		return nil, fmt.Errorf("invalid duration: %d seconds", p.Seconds)
	}
	if p.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", p.SampleRate)
	}

	job := logging.StartJob()
	logging.Debugf("tone: job %d started (seconds=%d, frequency=%v, amplitude=%v, sampleRate=%d)",
		job, p.Seconds, p.Frequency, p.Amplitude, p.SampleRate)

	samples, err := foldSeconds(ctx, p.Seconds, &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  p.SampleRate,
		},
		SourceBitDepth: a.bitDepth,
	}, func(acc *audio.IntBuffer) (*audio.IntBuffer, error) {
		chunk, err := a.synth.SynthesizeSeconds(p.Frequency, p.Amplitude, 1)
		if err != nil {
			return nil, err
		}
		return appendChunk(acc, chunk)
	})
	if err != nil {
		return nil, err
	}

	logging.Infof("tone: generated %d samples", len(samples.Data))

	declared := p.SampleRate * p.Seconds
	if len(samples.Data) != declared {
		logging.Warnf("tone: generated %d samples but header declares %d", len(samples.Data), declared)
	}

	header, err := a.header.BuildHeader(declared, p.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("build header: %w", err)
	}

	return &Track{
		Header:          header,
		Samples:         samples,
		DeclaredSamples: declared,
		BitDepth:        a.bitDepth,
	}, nil
}

// foldSeconds 对 n 个一秒片段做 fold，按索引顺序执行
func foldSeconds(ctx context.Context, n int, acc *audio.IntBuffer, step func(*audio.IntBuffer) (*audio.IntBuffer, error)) (*audio.IntBuffer, error) {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := step(acc)
		if err != nil {
			return nil, fmt.Errorf("synthesize second %d: %w", i, err)
		}
		acc = next
	}
	return acc, nil
}

func appendChunk(acc, chunk *audio.IntBuffer) (*audio.IntBuffer, error) {
	if chunk == nil {
		return nil, errors.New("synthesizer returned nil buffer")
	}
	if chunk.Format != nil && acc.Format != nil {
		if chunk.Format.NumChannels != acc.Format.NumChannels || chunk.Format.SampleRate != acc.Format.SampleRate {
			return nil, fmt.Errorf("chunk format %d ch @ %d Hz does not match %d ch @ %d Hz",
				chunk.Format.NumChannels, chunk.Format.SampleRate,
				acc.Format.NumChannels, acc.Format.SampleRate)
		}
	}
	acc.Data = append(acc.Data, chunk.Data...)
	return acc, nil
}

// WriteTo 先写头部，再写原始 PCM 数据
func (t *Track) WriteTo(w io.Writer) (int64, error) {
	pcm, err := EncodePCM(t.Samples, t.BitDepth)
	if err != nil {
		return 0, err
	}

	var total int64
	n, err := w.Write(t.Header)
	total += int64(n)
	if err != nil {
		return total, fmt.Errorf("write header: %w", err)
	}

	n, err = w.Write(pcm)
	total += int64(n)
	if err != nil {
		return total, fmt.Errorf("write samples: %w", err)
	}
	return total, nil
}

// WriteFile 创建（或覆盖）path 并写入音轨
// 不会创建缺失的目录，失败时也不清理已写入的部分文件
func WriteFile(path string, t *Track) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}

	if _, err := t.WriteTo(file); err != nil {
		file.Close()
		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	logging.Debugf("tone: wrote %s", path)
	return nil
}
