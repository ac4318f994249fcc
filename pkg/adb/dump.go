package adb

import (
	"io"
	"os"
	"sync"
)

var (
	dumpEnabled bool
	dumpFile    *os.File
	dumpMutex   sync.Mutex
)

func init() {
	// 通过环境变量开启线上数据记录
	dumpEnabled = os.Getenv("ADBKIT_DUMP") != ""
	if dumpEnabled {
		var err error
		dumpFile, err = os.OpenFile("adbkit.dump", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			dumpEnabled = false
		}
	}
}

// Dump 记录数据
func Dump(data []byte) {
	if dumpEnabled && dumpFile != nil {
		dumpMutex.Lock()
		defer dumpMutex.Unlock()
		dumpFile.Write(data)
	}
}

// DumpReader 包装Reader，读取的同时写入dump文件
type DumpReader struct {
	reader io.Reader
}

// NewDumpReader 创建新的DumpReader
// 未开启dump时直接返回原始Reader，避免多一层拷贝
func NewDumpReader(reader io.Reader) io.Reader {
	if !dumpEnabled {
		return reader
	}
	return &DumpReader{reader: reader}
}

// Read 实现io.Reader接口
func (d *DumpReader) Read(p []byte) (n int, err error) {
	n, err = d.reader.Read(p)
	if n > 0 {
		Dump(p[:n])
	}
	return
}
