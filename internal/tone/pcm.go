package tone

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/go-audio/audio"
)

// EncodePCM 将样本编码为 WAV 数据块使用的原始字节
// 16 位：有符号小端；8 位：无符号，偏移 128。越界值会被裁剪。
func EncodePCM(buf *audio.IntBuffer, bitDepth int) ([]byte, error) {
	if buf == nil {
		return nil, errors.New("nil sample buffer")
	}
	hi, err := fullScale(bitDepth)
	if err != nil {
		return nil, err
	}
	lo := -hi - 1

	out := make([]byte, len(buf.Data)*bitDepth/8)
	for i, v := range buf.Data {
		if v > hi {
			v = hi
		} else if v < lo {
			v = lo
		}

		switch bitDepth {
		case 8:
			out[i] = byte(v + 128)
		case 16:
			binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
		}
	}
	return out, nil
}
