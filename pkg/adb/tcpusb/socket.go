package tcpusb

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/antonvs2/adbkit/pkg/adb"
)

const (
	uint16Max = 0xFFFF
	uint32Max = 0xFFFFFFFF

	AuthToken        = 1
	AuthSignature    = 2
	AuthRSAPublicKey = 3

	TokenLength = 20
)

// Transporter 打开设备服务的抽象
// 通常由ADB客户端的OpenService实现
type Transporter interface {
	Open(serial, service string) (net.Conn, error)
}

// TransporterFunc 函数适配器
type TransporterFunc func(serial, service string) (net.Conn, error)

// Open 实现Transporter接口
func (f TransporterFunc) Open(serial, service string) (net.Conn, error) {
	return f(serial, service)
}

// Socket 一个已接入桥的ADB协议客户端
// 完成token认证后把客户端打开的每个服务转发到真实设备
type Socket struct {
	transporter Transporter
	serial      string
	conn        net.Conn
	options     *Options
	version     uint32
	maxPayload  int
	authorized  bool
	syncToken   *RollingCounter
	remoteId    *RollingCounter
	services    *ServiceMap
	token       []byte
	signature   []byte
	done        chan struct{}
	once        sync.Once
	writeMu     sync.Mutex
	log         *logrus.Entry
}

// NewSocket 创建新的客户端socket并开始处理
func NewSocket(transporter Transporter, serial string, conn net.Conn, options *Options) *Socket {
	if tcp, ok := conn.(*net.TCPConn); ok {
		tcp.SetNoDelay(true)
	}

	s := &Socket{
		transporter: transporter,
		serial:      serial,
		conn:        conn,
		options:     options,
		maxPayload:  4096,
		syncToken:   NewRollingCounter(uint32Max, 1),
		remoteId:    NewRollingCounter(uint32Max, 1),
		services:    NewServiceMap(),
		done:        make(chan struct{}),
		log: options.logger().WithFields(logrus.Fields{
			"remote": conn.RemoteAddr().String(),
			"serial": serial,
		}),
	}

	go s.readLoop()
	return s
}

// End 结束连接（幂等）
func (s *Socket) End() {
	s.once.Do(func() {
		close(s.done)
		s.services.End()
		s.conn.Close()
		s.log.Debug("connection ended")
	})
}

// Ended 连接是否已结束
func (s *Socket) Ended() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// RemoteAddress 获取客户端地址
func (s *Socket) RemoteAddress() string {
	return s.conn.RemoteAddr().String()
}

// Authorized 客户端是否已通过认证
func (s *Socket) Authorized() bool {
	return s.authorized
}

func (s *Socket) readLoop() {
	defer s.End()

	reader := NewPacketReader(s.conn)
	for {
		packet, err := reader.ReadPacket()
		if err != nil {
			if err != io.EOF && !s.Ended() {
				s.log.Errorf("read: %v", err)
			}
			return
		}

		if err := s.handlePacket(packet); err != nil {
			s.log.Errorf("handle %s: %v", packet, err)
			return
		}
	}
}

func (s *Socket) handlePacket(packet *Packet) error {
	switch packet.Command {
	case A_SYNC:
		return s.write(Assemble(A_SYNC, 1, s.syncToken.Next(), nil))
	case A_CNXN:
		return s.handleConnection(packet)
	case A_AUTH:
		return s.handleAuth(packet)
	case A_OPEN:
		return s.handleOpen(packet)
	case A_OKAY, A_WRTE, A_CLSE:
		return s.forwardServicePacket(packet)
	default:
		return fmt.Errorf("unknown command 0x%08x", packet.Command)
	}
}

// handleConnection 客户端握手，回以认证挑战
func (s *Socket) handleConnection(packet *Packet) error {
	s.version = Swap32(packet.Arg0)
	s.maxPayload = int(packet.Arg1)
	if s.maxPayload > uint16Max {
		s.maxPayload = uint16Max
	}

	token := make([]byte, TokenLength)
	if _, err := rand.Read(token); err != nil {
		return fmt.Errorf("failed to generate token: %v", err)
	}
	s.token = token

	s.log.Debugf("handshake version=%d maxPayload=%d", s.version, s.maxPayload)
	return s.write(Assemble(A_AUTH, AuthToken, 0, token))
}

// handleAuth token认证
// 客户端先送签名，token对不上时再送公钥
func (s *Socket) handleAuth(packet *Packet) error {
	switch packet.Arg0 {
	case AuthSignature:
		if s.signature == nil {
			s.signature = packet.Data
		}
		// 让客户端继续下一步（换个密钥重签或者上交公钥）
		return s.write(Assemble(A_AUTH, AuthToken, 0, s.token))

	case AuthRSAPublicKey:
		if s.signature == nil {
			return fmt.Errorf("public key sent before signature")
		}

		key, err := adb.ParsePublicKey(bytes.TrimRight(packet.Data, "\x00"))
		if err != nil {
			return fmt.Errorf("invalid public key: %v", err)
		}

		if err := key.VerifySignature(s.token, s.signature); err != nil {
			return fmt.Errorf("signature mismatch: %v", err)
		}

		if s.options.Auth != nil {
			if err := s.options.Auth(key); err != nil {
				return fmt.Errorf("rejected by auth handler: %v", err)
			}
		}

		s.authorized = true
		s.log.Infof("authorized key %s", key.Fingerprint)
		return s.acknowledge()

	default:
		return fmt.Errorf("unknown authentication method %d", packet.Arg0)
	}
}

// acknowledge 认证通过后回发设备banner
func (s *Socket) acknowledge() error {
	banner := fmt.Sprintf("device::%s\x00", s.options.banner())
	return s.write(Assemble(A_CNXN, Swap32(s.version), uint32(s.maxPayload), []byte(banner)))
}

// handleOpen 客户端请求打开设备服务
func (s *Socket) handleOpen(packet *Packet) error {
	if !s.authorized {
		return fmt.Errorf("unauthorized open")
	}

	remoteId := packet.Arg0
	localId := s.remoteId.Next()

	service := NewService(s.transporter, s.serial, localId, remoteId, s)
	service.onEnd = func() { s.services.Remove(localId) }

	if err := s.services.Insert(localId, service); err != nil {
		return err
	}

	s.log.Debugf("open %q local=%d remote=%d", bytes.TrimRight(packet.Data, "\x00"), localId, remoteId)

	if err := service.Handle(packet); err != nil {
		service.End()
		return err
	}
	return nil
}

// forwardServicePacket 把后续包转给对应的服务
func (s *Socket) forwardServicePacket(packet *Packet) error {
	if !s.authorized {
		return fmt.Errorf("unauthorized packet")
	}

	service := s.services.Get(packet.Arg1)
	if service == nil {
		// 服务可能刚结束，丢弃即可
		s.log.Debugf("packet for unknown service %d", packet.Arg1)
		return nil
	}

	return service.Handle(packet)
}

// write 序列化对客户端的写入
func (s *Socket) write(data []byte) error {
	if s.Ended() {
		return fmt.Errorf("connection ended")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, err := s.conn.Write(data)
	return err
}

func (s *Socket) logger() *logrus.Entry {
	return s.log
}
