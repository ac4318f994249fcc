package adb

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/antonvs2/adbkit/pkg/adb/sync"
)

// Sync 一次sync:切换后的文件同步会话
// 会话独占底层连接，结束后连接不可复用
type Sync struct {
	conn     *Connection
	parser   *Parser
	protocol *Protocol
}

// 同步会话常量
const (
	TempPath     = "/data/local/tmp"
	DefaultChmod = 0644

	// DataMaxLength 单个DATA块的载荷上限（ADB限制）
	DataMaxLength = 65536
)

// NewSync 在已切换到sync服务的连接上创建会话
func NewSync(conn *Connection) *Sync {
	return &Sync{
		conn:     conn,
		parser:   conn.Parser(),
		protocol: NewProtocol(),
	}
}

// TempFile 生成设备上的临时文件路径
func (s *Sync) TempFile(path string) string {
	return filepath.Join(TempPath, filepath.Base(path))
}

// Stat 获取文件状态
// 服务器用全零应答表示路径不存在，此时仍返回Stats，
// Exists等谓词均为false
func (s *Sync) Stat(path string) (*sync.Stats, error) {
	if err := s.sendCommandWithArg(STAT, path); err != nil {
		return nil, err
	}

	reply, err := s.parser.ReadAscii(4)
	if err != nil {
		return nil, err
	}

	switch reply {
	case STAT:
		statData, err := s.parser.ReadBytes(12)
		if err != nil {
			return nil, err
		}

		mode := binary.LittleEndian.Uint32(statData[0:4])
		size := binary.LittleEndian.Uint32(statData[4:8])
		mtime := binary.LittleEndian.Uint32(statData[8:12])

		return sync.NewStats(mode, size, time.Unix(int64(mtime), 0)), nil

	case FAIL:
		return nil, s.readError()

	default:
		return nil, s.parser.Unexpected([]byte(reply), "STAT or FAIL")
	}
}

// ReadDir 列出目录内容
// .和..不计入结果
func (s *Sync) ReadDir(path string) ([]*sync.Entry, error) {
	if err := s.sendCommandWithArg(LIST, path); err != nil {
		return nil, err
	}

	entries := make([]*sync.Entry, 0)
	for {
		reply, err := s.parser.ReadAscii(4)
		if err != nil {
			return nil, err
		}

		switch reply {
		case DENT:
			header, err := s.parser.ReadBytes(16)
			if err != nil {
				return nil, err
			}

			mode := binary.LittleEndian.Uint32(header[0:4])
			size := binary.LittleEndian.Uint32(header[4:8])
			mtime := binary.LittleEndian.Uint32(header[8:12])
			namelen := binary.LittleEndian.Uint32(header[12:16])

			name, err := s.parser.ReadBytes(int(namelen))
			if err != nil {
				return nil, err
			}

			if string(name) == "." || string(name) == ".." {
				continue
			}

			entries = append(entries, sync.NewEntry(string(name), mode, size, time.Unix(int64(mtime), 0)))

		case DONE:
			// DONE带一个与DENT头等长的空载荷
			if _, err := s.parser.ReadBytes(16); err != nil {
				return nil, err
			}
			return entries, nil

		case FAIL:
			return nil, s.readError()

		default:
			return nil, s.parser.Unexpected([]byte(reply), "DENT, DONE or FAIL")
		}
	}
}

// Push 推送文件或流到设备
func (s *Sync) Push(src interface{}, destPath string, mode os.FileMode) (*sync.PushTransfer, error) {
	switch v := src.(type) {
	case string:
		return s.PushFile(v, destPath, mode)
	case io.Reader:
		return s.PushStream(v, destPath, mode)
	default:
		return nil, fmt.Errorf("unsupported source type %T", src)
	}
}

// PushFile 推送本地文件到设备
func (s *Sync) PushFile(srcPath, destPath string, mode os.FileMode) (*sync.PushTransfer, error) {
	file, err := os.Open(srcPath)
	if err != nil {
		return nil, err
	}

	transfer, err := s.PushStream(file, destPath, mode)
	if err != nil {
		file.Close()
		return nil, err
	}

	transfer.On("end", func(interface{}) { file.Close() })
	transfer.On("error", func(interface{}) { file.Close() })
	return transfer, nil
}

// PushStream 推送数据流到设备
// DONE携带的mtime是设备将记录的修改时间
func (s *Sync) PushStream(stream io.Reader, destPath string, mode os.FileMode) (*sync.PushTransfer, error) {
	if mode == 0 {
		mode = DefaultChmod
	}

	if err := s.sendCommandWithArg(SEND, fmt.Sprintf("%s,%d", destPath, uint32(mode))); err != nil {
		return nil, err
	}

	transfer := sync.NewPushTransfer(func() { s.conn.Close() })
	go s.writeData(stream, uint32(time.Now().Unix()), transfer)
	return transfer, nil
}

// Pull 从设备拉取文件
func (s *Sync) Pull(path string) (*sync.PullTransfer, error) {
	if err := s.sendCommandWithArg(RECV, path); err != nil {
		return nil, err
	}

	transfer := sync.NewPullTransfer(func() { s.conn.Close() })
	go s.readData(transfer)
	return transfer, nil
}

// End 发送QUIT并关闭连接
func (s *Sync) End() error {
	if err := s.sendCommandWithLength(QUIT, 0); err != nil {
		s.conn.Close()
		return err
	}
	return s.conn.Close()
}

// writeData 把数据流按DATA块写到设备
func (s *Sync) writeData(stream io.Reader, mtime uint32, transfer *sync.PushTransfer) {
	buffer := make([]byte, DataMaxLength)

	for {
		n, err := stream.Read(buffer)
		if n > 0 {
			if werr := s.sendCommandWithLength(DATA, uint32(n)); werr != nil {
				s.failTransfer(transfer, werr)
				return
			}
			if _, werr := s.conn.Write(buffer[:n]); werr != nil {
				s.failTransfer(transfer, werr)
				return
			}
			transfer.Push(n)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			s.failTransfer(transfer, err)
			return
		}
	}

	if err := s.sendCommandWithLength(DONE, mtime); err != nil {
		s.failTransfer(transfer, err)
		return
	}

	// 服务器以一个最终的OKAY或FAIL收尾
	reply, err := s.parser.ReadAscii(4)
	if err != nil {
		s.failTransfer(transfer, err)
		return
	}

	switch reply {
	case OKAY:
		if _, err := s.parser.ReadBytes(4); err != nil {
			s.failTransfer(transfer, err)
			return
		}
		transfer.End()

	case FAIL:
		transfer.EmitError(s.readError())

	default:
		transfer.EmitError(s.parser.Unexpected([]byte(reply), "OKAY or FAIL"))
	}
}

// readData 把设备发来的DATA块交付给传输句柄
func (s *Sync) readData(transfer *sync.PullTransfer) {
	for {
		reply, err := s.parser.ReadAscii(4)
		if err != nil {
			s.failPull(transfer, err)
			return
		}

		switch reply {
		case DATA:
			lenData, err := s.parser.ReadBytes(4)
			if err != nil {
				s.failPull(transfer, err)
				return
			}
			length := binary.LittleEndian.Uint32(lenData)

			if err := s.parser.ReadByteFlow(int(length), transfer); err != nil {
				s.failPull(transfer, err)
				return
			}

		case DONE:
			if _, err := s.parser.ReadBytes(4); err != nil {
				s.failPull(transfer, err)
				return
			}
			transfer.End()
			return

		case FAIL:
			transfer.EmitError(s.readError())
			return

		default:
			transfer.EmitError(s.parser.Unexpected([]byte(reply), "DATA, DONE or FAIL"))
			return
		}
	}
}

func (s *Sync) failTransfer(transfer *sync.PushTransfer, err error) {
	if transfer.Cancelled() {
		err = ErrCancelled
	}
	transfer.EmitError(err)
}

func (s *Sync) failPull(transfer *sync.PullTransfer, err error) {
	if transfer.Cancelled() {
		err = ErrCancelled
	}
	transfer.EmitError(err)
}

// sendCommandWithLength 发送只带长度字段的SYNC命令
func (s *Sync) sendCommandWithLength(cmd string, length uint32) error {
	_, err := s.conn.Write(s.protocol.FormatSync(cmd, length))
	return err
}

// sendCommandWithArg 发送带路径参数的SYNC命令
func (s *Sync) sendCommandWithArg(cmd, arg string) error {
	_, err := s.conn.Write(s.protocol.FormatSyncRequest(cmd, arg))
	return err
}

// readError 读取SYNC风格的FAIL载荷（小端长度，非16进制）
func (s *Sync) readError() error {
	lenBytes, err := s.parser.ReadBytes(4)
	if err != nil {
		return err
	}

	msg, err := s.parser.ReadBytes(int(binary.LittleEndian.Uint32(lenBytes)))
	if err != nil {
		return err
	}

	return &FailError{Message: string(msg)}
}
