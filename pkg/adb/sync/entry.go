package sync

import (
	"time"
)

// Entry 目录列表中的一项
type Entry struct {
	Stats
	name string
}

// NewEntry 创建新的Entry实例
func NewEntry(name string, mode uint32, size uint32, mtime time.Time) *Entry {
	return &Entry{
		Stats: Stats{
			mode:  mode,
			size:  size,
			mtime: mtime,
		},
		name: name,
	}
}

// Name 获取文件名
func (e *Entry) Name() string {
	return e.name
}

// String 实现Stringer接口
func (e *Entry) String() string {
	return e.name
}
