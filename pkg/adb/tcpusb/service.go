package tcpusb

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"sync"
)

// Service 桥接一条客户端流和设备上的一个服务
// 客户端的A_OPEN触发到真实设备的连接，之后双向转发，
// 每个A_WRTE需要对端A_OKAY确认后才发下一个
type Service struct {
	transporter Transporter
	serial      string
	localId     uint32
	remoteId    uint32
	socket      *Socket
	transport   net.Conn
	opened      bool
	ended       bool
	ack         chan struct{}
	mu          sync.Mutex
	onEnd       func()
}

// NewService 创建新的服务桥
func NewService(transporter Transporter, serial string, localId, remoteId uint32, socket *Socket) *Service {
	return &Service{
		transporter: transporter,
		serial:      serial,
		localId:     localId,
		remoteId:    remoteId,
		socket:      socket,
		ack:         make(chan struct{}, 1),
	}
}

// Handle 处理发往本服务的数据包
func (s *Service) Handle(packet *Packet) error {
	switch packet.Command {
	case A_OPEN:
		return s.handleOpen(packet)
	case A_OKAY:
		return s.handleOkay(packet)
	case A_WRTE:
		return s.handleWrite(packet)
	case A_CLSE:
		s.End()
		return nil
	default:
		return fmt.Errorf("unexpected packet %s", packet)
	}
}

// End 结束服务并通知客户端（幂等）
func (s *Service) End() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	transport := s.transport
	localId := uint32(0)
	if s.opened {
		localId = s.localId
	}
	s.mu.Unlock()

	if transport != nil {
		transport.Close()
	}
	s.socket.write(Assemble(A_CLSE, localId, s.remoteId, nil))

	if s.onEnd != nil {
		s.onEnd()
	}
}

// handleOpen 建立到设备的服务连接
func (s *Service) handleOpen(packet *Packet) error {
	// 服务名以NUL结尾
	name := string(bytes.TrimRight(packet.Data, "\x00"))
	if name == "" {
		return fmt.Errorf("empty service name")
	}

	transport, err := s.transporter.Open(s.serial, name)
	if err != nil {
		s.End()
		return err
	}

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		transport.Close()
		return nil
	}
	s.transport = transport
	s.opened = true
	s.mu.Unlock()

	if err := s.socket.write(Assemble(A_OKAY, s.localId, s.remoteId, nil)); err != nil {
		s.End()
		return err
	}

	go s.pump()
	return nil
}

// handleOkay 对端确认了上一个A_WRTE
func (s *Service) handleOkay(packet *Packet) error {
	s.mu.Lock()
	opened := s.opened
	s.mu.Unlock()

	if !opened {
		return fmt.Errorf("premature OKAY packet")
	}

	select {
	case s.ack <- struct{}{}:
	default:
	}
	return nil
}

// handleWrite 客户端发来的数据写入设备
func (s *Service) handleWrite(packet *Packet) error {
	s.mu.Lock()
	transport := s.transport
	opened := s.opened
	s.mu.Unlock()

	if !opened || transport == nil {
		return fmt.Errorf("premature WRTE packet")
	}

	if len(packet.Data) > 0 {
		if _, err := transport.Write(packet.Data); err != nil {
			s.End()
			return err
		}
	}

	return s.socket.write(Assemble(A_OKAY, s.localId, s.remoteId, nil))
}

// pump 把设备输出按流控节奏转发给客户端
func (s *Service) pump() {
	defer s.End()

	buffer := make([]byte, s.socket.maxPayload)
	for {
		n, err := s.transport.Read(buffer)
		if n > 0 {
			if werr := s.socket.write(Assemble(A_WRTE, s.localId, s.remoteId, buffer[:n])); werr != nil {
				return
			}

			// 等对端确认再发下一块
			select {
			case <-s.ack:
			case <-s.socket.done:
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				s.socket.logger().Debugf("service %d transport read: %v", s.localId, err)
			}
			return
		}
	}
}
