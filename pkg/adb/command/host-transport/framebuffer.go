package hosttransport

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// FrameBufferMeta 帧缓冲头部元数据
type FrameBufferMeta struct {
	Version     uint32
	ColorFormat uint32 // 仅version 2，原样透传
	Bpp         uint32
	Size        uint32
	Width       uint32
	Height      uint32
	RedOffset   uint32
	RedLength   uint32
	BlueOffset  uint32
	BlueLength  uint32
	GreenOffset uint32
	GreenLength uint32
	AlphaOffset uint32
	AlphaLength uint32
	Format      string // rgb/rgba/bgr/bgra
}

// FrameBufferStream 帧缓冲像素流
// 读取端正好提供Size个字节的原始像素数据，不做整体缓冲
type FrameBufferStream struct {
	Meta   *FrameBufferMeta
	reader io.Reader
	conn   net.Conn
}

// Read 实现io.Reader接口
func (s *FrameBufferStream) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

// Close 关闭底层连接
func (s *FrameBufferStream) Close() error {
	return s.conn.Close()
}

// FrameBufferCommand 实现帧缓冲命令
type FrameBufferCommand struct {
	BaseCommand
}

// NewFrameBufferCommand 创建新的帧缓冲命令
func NewFrameBufferCommand(conn Conn) *FrameBufferCommand {
	return &FrameBufferCommand{BaseCommand{conn: conn}}
}

// Execute 执行帧缓冲命令
// 头部布局随版本变化：v1是版本后12个u32，v2在颜色布局字段前
// 多一个format字
func (c *FrameBufferCommand) Execute() (*FrameBufferStream, error) {
	if err := c.conn.Send("framebuffer:"); err != nil {
		return nil, err
	}

	if err := c.readStatus(); err != nil {
		return nil, err
	}

	versionBytes, err := c.conn.ReadBytes(4)
	if err != nil {
		return nil, err
	}
	version := binary.LittleEndian.Uint32(versionBytes)

	meta := &FrameBufferMeta{Version: version}
	switch version {
	case 1:
		header, err := c.conn.ReadBytes(48)
		if err != nil {
			return nil, err
		}
		parseColorHeader(meta, header)
	case 2:
		header, err := c.conn.ReadBytes(52)
		if err != nil {
			return nil, err
		}
		meta.ColorFormat = binary.LittleEndian.Uint32(header[0:4])
		parseColorHeader(meta, header[4:])
	default:
		return nil, fmt.Errorf("unsupported framebuffer version %d", version)
	}
	meta.Format = deriveFormat(meta)

	conn := c.conn.IntoRawStream()
	return &FrameBufferStream{
		Meta:   meta,
		reader: io.LimitReader(conn, int64(meta.Size)),
		conn:   conn,
	}, nil
}

// parseColorHeader 解析版本无关的12个u32字段
func parseColorHeader(meta *FrameBufferMeta, header []byte) {
	meta.Bpp = binary.LittleEndian.Uint32(header[0:4])
	meta.Size = binary.LittleEndian.Uint32(header[4:8])
	meta.Width = binary.LittleEndian.Uint32(header[8:12])
	meta.Height = binary.LittleEndian.Uint32(header[12:16])
	meta.RedOffset = binary.LittleEndian.Uint32(header[16:20])
	meta.RedLength = binary.LittleEndian.Uint32(header[20:24])
	meta.BlueOffset = binary.LittleEndian.Uint32(header[24:28])
	meta.BlueLength = binary.LittleEndian.Uint32(header[28:32])
	meta.GreenOffset = binary.LittleEndian.Uint32(header[32:36])
	meta.GreenLength = binary.LittleEndian.Uint32(header[36:40])
	meta.AlphaOffset = binary.LittleEndian.Uint32(header[40:44])
	meta.AlphaLength = binary.LittleEndian.Uint32(header[44:48])
}

// deriveFormat 根据通道布局推导格式标签
func deriveFormat(meta *FrameBufferMeta) string {
	format := "rgb"
	if meta.BlueOffset == 0 {
		format = "bgr"
	}
	if meta.Bpp == 32 || meta.AlphaLength > 0 {
		format += "a"
	}
	return format
}
