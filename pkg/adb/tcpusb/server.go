package tcpusb

import (
	"net"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/antonvs2/adbkit/pkg/adb"
)

// Options 桥服务器配置
type Options struct {
	// Auth 公钥审批回调，nil表示验签通过即放行
	Auth func(*adb.PublicKey) error

	// Banner 对客户端宣告的设备banner，默认adbkit-bridge
	Banner string

	// Logger 日志输出，默认logrus标准logger
	Logger *logrus.Logger
}

func (o *Options) banner() string {
	if o.Banner == "" {
		return "adbkit-bridge"
	}
	return o.Banner
}

func (o *Options) logger() *logrus.Logger {
	if o.Logger == nil {
		return logrus.StandardLogger()
	}
	return o.Logger
}

// Server 把一台设备以ADB wire协议暴露给多个客户端
// 每个接入的客户端经过token认证后，其打开的服务被转发到
// 真实设备上
type Server struct {
	transporter Transporter
	serial      string
	options     *Options
	listener    net.Listener
	connections []*Socket
	mu          sync.Mutex
}

// NewServer 创建新的桥服务器
func NewServer(transporter Transporter, serial string, options *Options) *Server {
	if options == nil {
		options = &Options{}
	}

	return &Server{
		transporter: transporter,
		serial:      serial,
		options:     options,
	}
}

// Listen 开始监听并接受客户端
func (s *Server) Listen(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.options.logger().Infof("bridge for %s listening on %s", s.serial, listener.Addr())

	go s.acceptLoop()
	return nil
}

// Addr 获取监听地址
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close 停止监听并结束所有连接
func (s *Server) Close() error {
	s.mu.Lock()
	listener := s.listener
	s.listener = nil
	connections := s.connections
	s.connections = nil
	s.mu.Unlock()

	for _, socket := range connections {
		socket.End()
	}

	if listener != nil {
		return listener.Close()
	}
	return nil
}

// Connections 获取当前活动连接
func (s *Server) Connections() []*Socket {
	s.mu.Lock()
	defer s.mu.Unlock()

	connections := make([]*Socket, len(s.connections))
	copy(connections, s.connections)
	return connections
}

func (s *Server) acceptLoop() {
	for {
		s.mu.Lock()
		listener := s.listener
		s.mu.Unlock()
		if listener == nil {
			return
		}

		conn, err := listener.Accept()
		if err != nil {
			return
		}

		socket := NewSocket(s.transporter, s.serial, conn, s.options)

		s.mu.Lock()
		s.connections = append(s.connections, socket)
		s.mu.Unlock()

		go func() {
			<-socket.done
			s.mu.Lock()
			for i, c := range s.connections {
				if c == socket {
					s.connections = append(s.connections[:i], s.connections[i+1:]...)
					break
				}
			}
			s.mu.Unlock()
		}()
	}
}
