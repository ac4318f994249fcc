package framebuffer

import (
	"fmt"
	"io"
)

// Meta 像素转换所需的通道布局
type Meta struct {
	Bpp         int
	RedOffset   int
	GreenOffset int
	BlueOffset  int
	AlphaOffset int
}

// RgbTransform 把任意通道顺序的原始像素转成RGB888
// 供不想依赖外部图像工具的调用方使用
type RgbTransform struct {
	meta       Meta
	buffer     []byte
	rPos       int
	gPos       int
	bPos       int
	pixelBytes int
}

// NewRgbTransform 创建新的像素转换器
// 只支持每通道8位的24/32bpp布局
func NewRgbTransform(meta Meta) (*RgbTransform, error) {
	if meta.Bpp != 24 && meta.Bpp != 32 {
		return nil, fmt.Errorf("unsupported bpp %d, only 24 and 32 bit pixels are supported", meta.Bpp)
	}

	return &RgbTransform{
		meta:       meta,
		rPos:       meta.RedOffset / 8,
		gPos:       meta.GreenOffset / 8,
		bPos:       meta.BlueOffset / 8,
		pixelBytes: meta.Bpp / 8,
	}, nil
}

// Transform 转换一块数据，跨块的半个像素留到下一次
func (t *RgbTransform) Transform(input []byte) []byte {
	t.buffer = append(t.buffer, input...)

	sourceCursor := 0
	targetCursor := 0
	target := make([]byte, len(t.buffer)/t.pixelBytes*3)

	for len(t.buffer)-sourceCursor >= t.pixelBytes {
		target[targetCursor+0] = t.buffer[sourceCursor+t.rPos]
		target[targetCursor+1] = t.buffer[sourceCursor+t.gPos]
		target[targetCursor+2] = t.buffer[sourceCursor+t.bPos]

		sourceCursor += t.pixelBytes
		targetCursor += 3
	}

	t.buffer = t.buffer[sourceCursor:]

	return target[:targetCursor]
}

// Reader 包装像素流，读取端得到RGB888数据
type Reader struct {
	source    io.Reader
	transform *RgbTransform
	pending   []byte
	eof       bool
}

// NewReader 创建新的转换Reader
func NewReader(source io.Reader, meta Meta) (*Reader, error) {
	transform, err := NewRgbTransform(meta)
	if err != nil {
		return nil, err
	}

	return &Reader{
		source:    source,
		transform: transform,
	}, nil
}

// Read 实现io.Reader接口
func (r *Reader) Read(p []byte) (int, error) {
	for len(r.pending) == 0 && !r.eof {
		buffer := make([]byte, 4096)
		n, err := r.source.Read(buffer)
		if n > 0 {
			r.pending = r.transform.Transform(buffer[:n])
		}
		if err != nil {
			r.eof = true
			if err != io.EOF {
				return 0, err
			}
		}
	}

	if len(r.pending) == 0 && r.eof {
		return 0, io.EOF
	}

	n := copy(p, r.pending)
	r.pending = r.pending[n:]
	return n, nil
}
