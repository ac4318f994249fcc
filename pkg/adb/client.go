package adb

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/antonvs2/adbkit/pkg/adb/command/host"
	hostserial "github.com/antonvs2/adbkit/pkg/adb/command/host-serial"
	hosttransport "github.com/antonvs2/adbkit/pkg/adb/command/host-transport"
	"github.com/antonvs2/adbkit/pkg/adb/proc"
	syncpkg "github.com/antonvs2/adbkit/pkg/adb/sync"
)

// Options 客户端配置
// 创建之后只读
type Options struct {
	Host string // ADB服务器地址
	Port int    // ADB服务器端口
	Bin  string // adb可执行文件路径，用于自动拉起服务器
}

// NewOptions 创建带默认值的配置
func NewOptions() *Options {
	return &Options{
		Host: "127.0.0.1",
		Port: 5037,
		Bin:  "adb",
	}
}

// isLocal 服务器是否在本机，只有本机才尝试拉起
func (o *Options) isLocal() bool {
	switch o.Host {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// Client ADB客户端
// 每个命令独占一条新连接，命令之间互不影响
type Client struct {
	options *Options
}

// NewClient 创建新的ADB客户端
func NewClient(options *Options) *Client {
	if options == nil {
		options = NewOptions()
	}
	if options.Host == "" {
		options.Host = "127.0.0.1"
	}
	if options.Port == 0 {
		options.Port = 5037
	}
	if options.Bin == "" {
		options.Bin = "adb"
	}

	return &Client{options: options}
}

// connection 为一个命令建立新连接
func (c *Client) connection() (*Connection, error) {
	conn := NewConnection(c.options)
	if err := conn.Connect(); err != nil {
		return nil, err
	}
	return conn, nil
}

// transport 建立已切换到目标设备的连接
func (c *Client) transport(serial string) (*Connection, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}

	if err := host.NewTransportCommand(conn).Execute(serial); err != nil {
		conn.Close()
		return nil, classifyFail(serial, err)
	}
	return conn, nil
}

// Version 获取ADB服务器版本
func (c *Client) Version() (int, error) {
	conn, err := c.connection()
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	return host.NewVersionCommand(conn).Execute()
}

// Kill 终止ADB服务器
func (c *Client) Kill() error {
	conn, err := c.connection()
	if err != nil {
		return err
	}
	defer conn.Close()

	return host.NewKillCommand(conn).Execute()
}

// Connect 连接网络设备
func (c *Client) Connect(deviceHost string, port int) (string, error) {
	if port == 0 {
		port = 5555
	}

	conn, err := c.connection()
	if err != nil {
		return "", err
	}
	defer conn.Close()

	return host.NewConnectCommand(conn).Execute(deviceHost, port)
}

// Disconnect 断开网络设备
func (c *Client) Disconnect(deviceHost string, port int) (string, error) {
	if port == 0 {
		port = 5555
	}

	conn, err := c.connection()
	if err != nil {
		return "", err
	}
	defer conn.Close()

	return host.NewDisconnectCommand(conn).Execute(deviceHost, port)
}

// ListDevices 列出所有设备
func (c *Client) ListDevices() ([]host.Device, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return host.NewDevicesCommand(conn).Execute()
}

// ListDevicesWithPaths 列出所有设备及其路径信息
func (c *Client) ListDevicesWithPaths() ([]host.Device, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return host.NewDevicesWithPathsCommand(conn).Execute()
}

// TrackDevices 开始跟踪设备上下线
// 返回的跟踪器持有连接，调用End释放
func (c *Client) TrackDevices() (*Tracker, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}

	if err := host.NewTrackDevicesCommand(conn).Execute(); err != nil {
		conn.Close()
		return nil, err
	}

	return NewTracker(conn), nil
}

// Forward 建立端口转发
func (c *Client) Forward(serial, local, remote string) error {
	conn, err := c.connection()
	if err != nil {
		return err
	}
	defer conn.Close()

	return hostserial.NewForwardCommand(conn).Execute(serial, local, remote)
}

// ListForwards 列出设备的转发配置
func (c *Client) ListForwards(serial string) ([]hostserial.Forward, error) {
	conn, err := c.connection()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return hostserial.NewListForwardsCommand(conn).Execute(serial)
}

// GetDevicePath 获取设备路径
func (c *Client) GetDevicePath(serial string) (string, error) {
	conn, err := c.connection()
	if err != nil {
		return "", err
	}
	defer conn.Close()

	return hostserial.NewGetDevicePathCommand(conn).Execute(serial)
}

// GetSerialNo 获取设备序列号
func (c *Client) GetSerialNo(serial string) (string, error) {
	conn, err := c.connection()
	if err != nil {
		return "", err
	}
	defer conn.Close()

	return hostserial.NewGetSerialNoCommand(conn).Execute(serial)
}

// GetState 获取设备状态
func (c *Client) GetState(serial string) (string, error) {
	conn, err := c.connection()
	if err != nil {
		return "", err
	}
	defer conn.Close()

	return hostserial.NewGetStateCommand(conn).Execute(serial)
}

// WaitForDevice 等待设备可用
func (c *Client) WaitForDevice(serial string) (string, error) {
	conn, err := c.connection()
	if err != nil {
		return "", err
	}
	defer conn.Close()

	return hostserial.NewWaitForDeviceCommand(conn).Execute(serial)
}

// Shell 执行shell命令，返回输出流
// 流的所有权移交给调用方，stdout和stderr不区分
func (c *Client) Shell(serial, command string) (net.Conn, error) {
	conn, err := c.transport(serial)
	if err != nil {
		return nil, err
	}

	stream, err := hosttransport.NewShellCommand(conn).Execute(command)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return stream, nil
}

// ShellArgs 执行参数向量形式的shell命令，参数逐个转义
func (c *Client) ShellArgs(serial string, args ...string) (net.Conn, error) {
	return c.Shell(serial, hosttransport.EscapeAll(args))
}

// ShellOutput 执行shell命令并收集全部输出
func (c *Client) ShellOutput(serial, command string) ([]byte, error) {
	stream, err := c.Shell(serial, command)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	return io.ReadAll(stream)
}

// Reboot 重启设备
func (c *Client) Reboot(serial string, mode hosttransport.RebootMode) error {
	conn, err := c.transport(serial)
	if err != nil {
		return err
	}
	defer conn.Close()

	return hosttransport.NewRebootCommand(conn).Execute(mode)
}

// Remount 以读写方式重新挂载系统分区
func (c *Client) Remount(serial string) error {
	conn, err := c.transport(serial)
	if err != nil {
		return err
	}
	defer conn.Close()

	return hosttransport.NewRemountCommand(conn).Execute()
}

// Root 重启adbd为root
func (c *Client) Root(serial string) error {
	conn, err := c.transport(serial)
	if err != nil {
		return err
	}
	defer conn.Close()

	return hosttransport.NewRootCommand(conn).Execute()
}

// TcpIp 让adbd监听TCP端口
func (c *Client) TcpIp(serial string, port int) error {
	conn, err := c.transport(serial)
	if err != nil {
		return err
	}
	defer conn.Close()

	return hosttransport.NewTcpIpCommand(conn).Execute(port)
}

// Usb 让adbd回到USB监听
func (c *Client) Usb(serial string) error {
	conn, err := c.transport(serial)
	if err != nil {
		return err
	}
	defer conn.Close()

	return hosttransport.NewUsbCommand(conn).Execute()
}

// GetProperties 获取设备系统属性
func (c *Client) GetProperties(serial string) (map[string]string, error) {
	conn, err := c.transport(serial)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return hosttransport.NewGetPropertiesCommand(conn).Execute()
}

// GetFeatures 获取设备特性
func (c *Client) GetFeatures(serial string) (map[string]interface{}, error) {
	conn, err := c.transport(serial)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return hosttransport.NewGetFeaturesCommand(conn).Execute()
}

// GetPackages 获取已安装的包列表
func (c *Client) GetPackages(serial string) ([]string, error) {
	conn, err := c.transport(serial)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return hosttransport.NewGetPackagesCommand(conn).Execute()
}

// IsInstalled 检查包是否已安装
func (c *Client) IsInstalled(serial, pkg string) (bool, error) {
	conn, err := c.transport(serial)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	return hosttransport.NewIsInstalledCommand(conn).Execute(pkg)
}

// Install 推送本地APK并安装
func (c *Client) Install(serial, localPath string, args ...string) error {
	temp := fmt.Sprintf("%s/%d.apk", TempPath, time.Now().UnixNano())

	transfer, err := c.Push(serial, localPath, temp, DefaultChmod)
	if err != nil {
		return err
	}
	if err := transfer.Wait(); err != nil {
		return err
	}

	if err := c.InstallRemote(serial, temp, args...); err != nil {
		return err
	}

	// 尽力清理临时APK，失败不影响结果
	if stream, err := c.Shell(serial, fmt.Sprintf("rm -f %s", hosttransport.Escape(temp))); err == nil {
		io.Copy(io.Discard, stream)
		stream.Close()
	}
	return nil
}

// InstallRemote 安装设备上已有的APK
func (c *Client) InstallRemote(serial, remotePath string, args ...string) error {
	conn, err := c.transport(serial)
	if err != nil {
		return err
	}
	defer conn.Close()

	return hosttransport.NewInstallCommand(conn).Execute(remotePath, args...)
}

// Uninstall 卸载应用
func (c *Client) Uninstall(serial, pkg string) error {
	conn, err := c.transport(serial)
	if err != nil {
		return err
	}
	defer conn.Close()

	return hosttransport.NewUninstallCommand(conn).Execute(pkg)
}

// Clear 清除应用数据
func (c *Client) Clear(serial, pkg string) error {
	conn, err := c.transport(serial)
	if err != nil {
		return err
	}
	defer conn.Close()

	return hosttransport.NewClearCommand(conn).Execute(pkg)
}

// StartActivity 启动activity
func (c *Client) StartActivity(serial string, intent *hosttransport.Intent) error {
	conn, err := c.transport(serial)
	if err != nil {
		return err
	}
	defer conn.Close()

	return hosttransport.NewStartActivityCommand(conn).Execute(intent)
}

// StartService 启动service
func (c *Client) StartService(serial string, intent *hosttransport.Intent) error {
	conn, err := c.transport(serial)
	if err != nil {
		return err
	}
	defer conn.Close()

	return hosttransport.NewStartServiceCommand(conn).Execute(intent)
}

// Broadcast 发送广播
func (c *Client) Broadcast(serial string, intent *hosttransport.Intent) error {
	conn, err := c.transport(serial)
	if err != nil {
		return err
	}
	defer conn.Close()

	return hosttransport.NewBroadcastCommand(conn).Execute(intent)
}

// WaitBootComplete 轮询直到设备完成启动
// 每次探测用一条新连接，探测间隔约1秒，通过ctx取消
func (c *Client) WaitBootComplete(ctx context.Context, serial string) error {
	for {
		conn, err := c.transport(serial)
		if err != nil {
			return err
		}

		done, err := hosttransport.NewWaitBootCompleteCommand(conn).Execute()
		conn.Close()
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ErrCancelled
		case <-time.After(time.Second):
		}
	}
}

// Sync 打开文件同步会话
// 会话持有连接，调用End释放
func (c *Client) Sync(serial string) (*Sync, error) {
	conn, err := c.transport(serial)
	if err != nil {
		return nil, err
	}

	if err := hosttransport.NewSyncCommand(conn).Execute(); err != nil {
		conn.Close()
		return nil, err
	}

	return NewSync(conn), nil
}

// Stat 获取设备上文件的状态
func (c *Client) Stat(serial, path string) (*syncpkg.Stats, error) {
	session, err := c.Sync(serial)
	if err != nil {
		return nil, err
	}
	defer session.End()

	return session.Stat(path)
}

// ReadDir 列出设备上的目录
func (c *Client) ReadDir(serial, path string) ([]*syncpkg.Entry, error) {
	session, err := c.Sync(serial)
	if err != nil {
		return nil, err
	}
	defer session.End()

	return session.ReadDir(path)
}

// Push 推送本地文件或流到设备
func (c *Client) Push(serial string, src interface{}, destPath string, mode os.FileMode) (*syncpkg.PushTransfer, error) {
	session, err := c.Sync(serial)
	if err != nil {
		return nil, err
	}

	transfer, err := session.Push(src, destPath, mode)
	if err != nil {
		session.End()
		return nil, err
	}

	transfer.On("end", func(interface{}) { session.End() })
	transfer.On("error", func(interface{}) { session.End() })
	return transfer, nil
}

// Pull 从设备拉取文件
func (c *Client) Pull(serial, path string) (*syncpkg.PullTransfer, error) {
	session, err := c.Sync(serial)
	if err != nil {
		return nil, err
	}

	transfer, err := session.Pull(path)
	if err != nil {
		session.End()
		return nil, err
	}

	transfer.On("end", func(interface{}) { session.End() })
	transfer.On("error", func(interface{}) { session.End() })
	return transfer, nil
}

// FrameBuffer 抓取当前屏幕内容
// 返回解析好的头部元数据和原始像素流
func (c *Client) FrameBuffer(serial string) (*hosttransport.FrameBufferStream, error) {
	conn, err := c.transport(serial)
	if err != nil {
		return nil, err
	}

	stream, err := hosttransport.NewFrameBufferCommand(conn).Execute()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return stream, nil
}

// Screencap 通过screencap -p截图，返回PNG数据流
func (c *Client) Screencap(serial string) (io.ReadCloser, error) {
	conn, err := c.transport(serial)
	if err != nil {
		return nil, err
	}

	stream, err := hosttransport.NewScreencapCommand(conn).Execute()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return stream, nil
}

// OpenTcp 打开到设备TCP端口的隧道
func (c *Client) OpenTcp(serial string, port int, deviceHost string) (net.Conn, error) {
	conn, err := c.transport(serial)
	if err != nil {
		return nil, err
	}

	stream, err := hosttransport.NewTcpCommand(conn).Execute(port, deviceHost)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return stream, nil
}

// OpenLog 打开设备日志流
func (c *Client) OpenLog(serial, name string) (net.Conn, error) {
	conn, err := c.transport(serial)
	if err != nil {
		return nil, err
	}

	stream, err := hosttransport.NewLogCommand(conn).Execute(name)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return stream, nil
}

// OpenLogcat 打开二进制logcat流
// 解析交给外部的logcat解析库
func (c *Client) OpenLogcat(serial string, clear bool) (io.ReadCloser, error) {
	conn, err := c.transport(serial)
	if err != nil {
		return nil, err
	}

	stream, err := hosttransport.NewLogcatCommand(conn).Execute(clear)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return stream, nil
}

// OpenJdwp 打开到调试进程的JDWP隧道
func (c *Client) OpenJdwp(serial string, pid int) (net.Conn, error) {
	conn, err := c.transport(serial)
	if err != nil {
		return nil, err
	}

	stream, err := hosttransport.NewJdwpCommand(conn).Execute(pid)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return stream, nil
}

// TrackJdwp 打开JDWP进程跟踪流
// 之后连接上是长度前缀的pid列表快照，由调用方消费
func (c *Client) TrackJdwp(serial string) (net.Conn, error) {
	conn, err := c.transport(serial)
	if err != nil {
		return nil, err
	}

	if err := hosttransport.NewTrackJdwpCommand(conn).Execute(); err != nil {
		conn.Close()
		return nil, err
	}
	return conn.IntoRawStream(), nil
}

// OpenLocal 连接设备上的unix socket
func (c *Client) OpenLocal(serial, path string) (net.Conn, error) {
	conn, err := c.transport(serial)
	if err != nil {
		return nil, err
	}

	stream, err := hosttransport.NewLocalCommand(conn).Execute(path)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return stream, nil
}

// OpenService 在设备传输上打开任意服务并移交原始流
// 其他Open*便利方法都是这一原语的特例
func (c *Client) OpenService(serial, service string) (net.Conn, error) {
	conn, err := c.transport(serial)
	if err != nil {
		return nil, err
	}

	if err := conn.Send(service); err != nil {
		conn.Close()
		return nil, err
	}
	if err := conn.ReadStatus(); err != nil {
		conn.Close()
		return nil, err
	}

	return conn.IntoRawStream(), nil
}

// OpenProcStat 打开设备CPU负载监视器
// 周期性通过shell读取/proc/stat并计算差分
func (c *Client) OpenProcStat(serial string) *proc.Stat {
	return proc.New(func() (io.ReadCloser, error) {
		return c.Shell(serial, "cat /proc/stat")
	})
}

// MonkeyConnection monkey的控制连接
// 承载monkey的shell流必须和控制连接一起关闭
type MonkeyConnection struct {
	net.Conn
	shell net.Conn
}

// Close 关闭控制连接和shell流
func (m *MonkeyConnection) Close() error {
	err := m.Conn.Close()
	if serr := m.shell.Close(); err == nil {
		err = serr
	}
	return err
}

// OpenMonkey 在设备上启动monkey并连接其控制端口
// 返回的连接交给外部的monkey协议库驱动
func (c *Client) OpenMonkey(serial string, port int) (net.Conn, error) {
	if port == 0 {
		port = 1080
	}

	conn, err := c.transport(serial)
	if err != nil {
		return nil, err
	}

	shell, err := hosttransport.NewMonkeyCommand(conn).Execute(port)
	if err != nil {
		conn.Close()
		return nil, err
	}

	// monkey要花一点时间监听端口
	var control net.Conn
	for attempt := 0; attempt < 10; attempt++ {
		control, err = c.OpenTcp(serial, port, "")
		if err == nil {
			return &MonkeyConnection{Conn: control, shell: shell}, nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	shell.Close()
	return nil, err
}
