package adb

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"
)

// Protocol ADB协议常量和工具
type Protocol struct{}

// 协议常量
const (
	OKAY = "OKAY"
	FAIL = "FAIL"
	STAT = "STAT"
	LIST = "LIST"
	DENT = "DENT"
	RECV = "RECV"
	DATA = "DATA"
	DONE = "DONE"
	SEND = "SEND"
	QUIT = "QUIT"
)

// MaxPayload 单帧载荷上限（4位16进制长度的最大值）
const MaxPayload = 0xFFFF

// DecodeLength 解码长度值（从16进制字符串）
func (p *Protocol) DecodeLength(length string) (int, error) {
	val, err := strconv.ParseUint(length, 16, 16)
	if err != nil {
		return 0, &UnexpectedDataError{Unexpected: length, Expected: "four hex digits"}
	}
	return int(val), nil
}

// EncodeLength 编码长度值（到16进制字符串）
func (p *Protocol) EncodeLength(length int) string {
	return fmt.Sprintf("%04x", length)
}

// EncodeData 编码数据（添加长度前缀）
func (p *Protocol) EncodeData(data []byte) ([]byte, error) {
	if data == nil {
		data = []byte{}
	}

	if len(data) > MaxPayload {
		return nil, fmt.Errorf("data too long for protocol encode: %d bytes", len(data))
	}

	// 合并长度前缀和数据
	return append([]byte(p.EncodeLength(len(data))), data...), nil
}

// DecodeData 解码数据（解析长度前缀）
func (p *Protocol) DecodeData(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("data too short for protocol decode")
	}

	// 解析长度
	length, err := p.DecodeLength(string(data[:4]))
	if err != nil {
		return nil, err
	}

	if len(data) < 4+length {
		return nil, fmt.Errorf("incomplete data: expected %d bytes, got %d", length, len(data)-4)
	}

	return data[4 : 4+length], nil
}

// EncodeMessage 编码消息（包括命令和参数）
func (p *Protocol) EncodeMessage(cmd string, args ...string) ([]byte, error) {
	var buffer bytes.Buffer

	buffer.WriteString(cmd)
	for _, arg := range args {
		buffer.WriteByte(':')
		buffer.WriteString(arg)
	}

	return p.EncodeData(buffer.Bytes())
}

// EncodeString 编码字符串（用于传输）
func (p *Protocol) EncodeString(s string) ([]byte, error) {
	return p.EncodeData([]byte(s))
}

// DecodeString 解码字符串
func (p *Protocol) DecodeString(data []byte) (string, error) {
	decoded, err := p.DecodeData(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// FormatSync 格式化SYNC子协议头（4字节命令+4字节小端长度）
func (p *Protocol) FormatSync(cmd string, length uint32) []byte {
	message := make([]byte, 8)
	copy(message[:4], cmd)
	binary.LittleEndian.PutUint32(message[4:], length)
	return message
}

// FormatSyncRequest 格式化带路径参数的SYNC请求
func (p *Protocol) FormatSyncRequest(cmd string, arg string) []byte {
	message := p.FormatSync(cmd, uint32(len(arg)))
	return append(message, []byte(arg)...)
}

// ParseSyncHeader 解析SYNC响应头
func (p *Protocol) ParseSyncHeader(header []byte) (string, uint32, error) {
	if len(header) < 8 {
		return "", 0, fmt.Errorf("sync header too short")
	}

	return string(header[:4]), binary.LittleEndian.Uint32(header[4:8]), nil
}

// NewProtocol 创建新的协议实例
func NewProtocol() *Protocol {
	return &Protocol{}
}
