package tcpusb

import (
	"encoding/binary"
	"io"
)

// PacketReader 从字节流中同步读取数据包
type PacketReader struct {
	stream io.Reader
	header [24]byte
}

// NewPacketReader 创建新的数据包读取器
func NewPacketReader(stream io.Reader) *PacketReader {
	return &PacketReader{stream: stream}
}

// ReadPacket 读取下一个完整的数据包
// 头部或载荷校验失败返回对应的错误，流结束返回io.EOF
func (r *PacketReader) ReadPacket() (*Packet, error) {
	if _, err := io.ReadFull(r.stream, r.header[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}

	packet := &Packet{
		Command: binary.LittleEndian.Uint32(r.header[0:4]),
		Arg0:    binary.LittleEndian.Uint32(r.header[4:8]),
		Arg1:    binary.LittleEndian.Uint32(r.header[8:12]),
		Length:  binary.LittleEndian.Uint32(r.header[12:16]),
		Check:   binary.LittleEndian.Uint32(r.header[16:20]),
		Magic:   binary.LittleEndian.Uint32(r.header[20:24]),
	}

	if !packet.VerifyMagic() {
		return nil, &MagicError{Packet: packet}
	}

	if packet.Length > 0 {
		packet.Data = make([]byte, packet.Length)
		if _, err := io.ReadFull(r.stream, packet.Data); err != nil {
			return nil, err
		}
		if !packet.VerifyChecksum() {
			return nil, &ChecksumError{Packet: packet}
		}
	}

	return packet, nil
}
