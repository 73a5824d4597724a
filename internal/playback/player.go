package playback

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-audio/audio"
	"github.com/gordonklaus/portaudio"
	"github.com/liuscraft/tonegen/internal/logging"
)

// Config 播放配置
type Config struct {
	DeviceName      string // 设备名称（部分匹配），空表示默认输出设备
	HighLatency     bool   // 使用设备默认高延迟（蓝牙设备）
	FramesPerBuffer int
}

type outputStream interface {
	Start() error
	Write() error
	Abort() error
	Stop() error
	Close() error
}

// Player 通过 PortAudio 播放生成的音轨
type Player struct {
	cfg       Config
	resampler Resampler
}

func NewPlayer(cfg Config, resampler Resampler) *Player {
	if cfg.FramesPerBuffer <= 0 {
		cfg.FramesPerBuffer = 1024
	}
	if resampler == nil {
		resampler = NewLinearResampler()
	}
	return &Player{cfg: cfg, resampler: resampler}
}

// Play 阻塞直到播放完成或 ctx 取消
func (p *Player) Play(ctx context.Context, buf *audio.IntBuffer) error {
	if buf == nil || buf.Format == nil {
		return errors.New("playback: missing sample format")
	}
	if buf.Format.NumChannels != 1 {
		return fmt.Errorf("playback: only mono is supported, got %d channels", buf.Format.NumChannels)
	}

	samples, err := toInt16(buf)
	if err != nil {
		return err
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}
	defer portaudio.Terminate()

	frames := make([]int16, p.cfg.FramesPerBuffer)
	stream, rate, err := p.openStream(buf.Format.SampleRate, &frames)
	if err != nil {
		return err
	}

	if rate != buf.Format.SampleRate {
		logging.Warnf("Player: device rejected %d Hz, resampling to %d Hz", buf.Format.SampleRate, rate)
		samples, err = p.resampler.Resample(samples, buf.Format.SampleRate, rate, 1)
		if err != nil {
			stream.Close()
			return fmt.Errorf("resample: %w", err)
		}
	}

	return playSamples(ctx, stream, frames, samples)
}

// openStream 先尝试以音轨采样率打开，失败后退回设备默认采样率
func (p *Player) openStream(sampleRate int, frames *[]int16) (outputStream, int, error) {
	device, err := p.findDevice()
	if err != nil {
		return nil, 0, err
	}

	latency := device.DefaultLowOutputLatency
	if p.cfg.HighLatency {
		latency = device.DefaultHighOutputLatency
	}
	logging.Infof("Player: device=%s, latency=%.1fms", device.Name, latency.Seconds()*1000)

	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   device,
			Channels: 1,
			Latency:  latency,
		},
		SampleRate:      float64(sampleRate),
		FramesPerBuffer: len(*frames),
	}

	stream, err := portaudio.OpenStream(params, frames)
	if err == nil {
		return stream, sampleRate, nil
	}

	fallback := int(device.DefaultSampleRate)
	if fallback <= 0 || fallback == sampleRate {
		return nil, 0, fmt.Errorf("open output stream: %w", err)
	}
	logging.Warnf("Player: open at %d Hz failed (%v), retrying at %d Hz", sampleRate, err, fallback)

	params.SampleRate = float64(fallback)
	stream, err = portaudio.OpenStream(params, frames)
	if err != nil {
		return nil, 0, fmt.Errorf("open output stream: %w", err)
	}
	return stream, fallback, nil
}

func (p *Player) findDevice() (*portaudio.DeviceInfo, error) {
	if name := strings.TrimSpace(p.cfg.DeviceName); name != "" {
		device, err := findOutputDeviceByName(name)
		if err == nil {
			return device, nil
		}
		logging.Warnf("Player: device %q not found, falling back to default: %v", name, err)
	}

	device, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return nil, fmt.Errorf("default output device: %w", err)
	}
	return device, nil
}

func findOutputDeviceByName(name string) (*portaudio.DeviceInfo, error) {
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	return matchOutputDevice(devices, name)
}

func matchOutputDevice(devices []*portaudio.DeviceInfo, name string) (*portaudio.DeviceInfo, error) {
	nameLower := strings.ToLower(name)
	for _, dev := range devices {
		if dev.MaxOutputChannels > 0 && strings.Contains(strings.ToLower(dev.Name), nameLower) {
			return dev, nil
		}
	}
	return nil, fmt.Errorf("no output device found matching %q", name)
}

// playSamples 按 frames 大小分块写入，最后一块补零
// frames 必须是打开 stream 时绑定的缓冲区
func playSamples(ctx context.Context, stream outputStream, frames, samples []int16) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return fmt.Errorf("start output stream: %w", err)
	}

	for off := 0; off < len(samples); off += len(frames) {
		if err := ctx.Err(); err != nil {
			if abortErr := stream.Abort(); abortErr != nil {
				logging.Errorf("Player: error aborting stream: %v", abortErr)
			}
			return err
		}

		n := copy(frames, samples[off:])
		for i := n; i < len(frames); i++ {
			frames[i] = 0
		}
		if err := stream.Write(); err != nil {
			return fmt.Errorf("write output stream: %w", err)
		}
	}

	if err := stream.Stop(); err != nil {
		return fmt.Errorf("stop output stream: %w", err)
	}
	return nil
}

func toInt16(buf *audio.IntBuffer) ([]int16, error) {
	shift := 0
	switch buf.SourceBitDepth {
	case 16, 0:
	case 8:
		shift = 8
	default:
		return nil, fmt.Errorf("playback: unsupported bit depth %d", buf.SourceBitDepth)
	}

	out := make([]int16, len(buf.Data))
	for i, v := range buf.Data {
		v <<= shift
		if v > 32767 {
			v = 32767
		} else if v < -32768 {
			v = -32768
		}
		out[i] = int16(v)
	}
	return out, nil
}
