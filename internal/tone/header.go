package tone

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// HeaderSize is the size of the canonical PCM WAV header.
const HeaderSize = 44

// HeaderBuilder builds the WAV header for a declared number of samples.
type HeaderBuilder interface {
	BuildHeader(totalSamples, sampleRate int) ([]byte, error)
}

type waveHeader struct {
	RiffID   [4]byte // "RIFF"
	FileSize uint32  // 36 + DataSize
	WaveID   [4]byte // "WAVE"

	FmtID         [4]byte // "fmt "
	FmtSize       uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * NumChannels * BitsPerSample/8
	BlockAlign    uint16 // NumChannels * BitsPerSample/8
	BitsPerSample uint16

	DataID   [4]byte // "data"
	DataSize uint32  // NumSamples * NumChannels * BitsPerSample/8
}

// RIFFHeaderBuilder writes a 44-byte RIFF/WAVE PCM header.
type RIFFHeaderBuilder struct {
	Channels int
	BitDepth int
}

func NewRIFFHeaderBuilder(channels, bitDepth int) *RIFFHeaderBuilder {
	return &RIFFHeaderBuilder{Channels: channels, BitDepth: bitDepth}
}

func (b *RIFFHeaderBuilder) BuildHeader(totalSamples, sampleRate int) ([]byte, error) {
	if totalSamples < 0 {
		return nil, fmt.Errorf("invalid sample count: %d", totalSamples)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	if b.Channels <= 0 {
		return nil, fmt.Errorf("invalid channels: %d", b.Channels)
	}
	if _, err := fullScale(b.BitDepth); err != nil {
		return nil, err
	}

	blockAlign := b.Channels * b.BitDepth / 8
	dataSize := uint64(totalSamples) * uint64(blockAlign)
	if dataSize+36 > math.MaxUint32 {
		return nil, fmt.Errorf("data size %d overflows WAV header", dataSize)
	}

	header := waveHeader{
		RiffID:        [4]byte{'R', 'I', 'F', 'F'},
		FileSize:      uint32(36 + dataSize),
		WaveID:        [4]byte{'W', 'A', 'V', 'E'},
		FmtID:         [4]byte{'f', 'm', 't', ' '},
		FmtSize:       16,
		AudioFormat:   1,
		NumChannels:   uint16(b.Channels),
		SampleRate:    uint32(sampleRate),
		ByteRate:      uint32(sampleRate * blockAlign),
		BlockAlign:    uint16(blockAlign),
		BitsPerSample: uint16(b.BitDepth),
		DataID:        [4]byte{'d', 'a', 't', 'a'},
		DataSize:      uint32(dataSize),
	}

	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize))
	if err := binary.Write(buf, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("encode WAV header: %w", err)
	}
	return buf.Bytes(), nil
}
