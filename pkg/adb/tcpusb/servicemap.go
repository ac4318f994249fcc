package tcpusb

import (
	"fmt"
	"sync"
)

// ServiceMap 按本地id索引活动服务
type ServiceMap struct {
	remotes map[uint32]*Service
	mu      sync.RWMutex
}

// NewServiceMap 创建新的服务映射
func NewServiceMap() *ServiceMap {
	return &ServiceMap{
		remotes: make(map[uint32]*Service),
	}
}

// Insert 登记新服务
func (m *ServiceMap) Insert(localId uint32, service *Service) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.remotes[localId]; exists {
		return fmt.Errorf("local id %d is already in use", localId)
	}

	m.remotes[localId] = service
	return nil
}

// Get 查找服务
func (m *ServiceMap) Get(localId uint32) *Service {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.remotes[localId]
}

// Remove 移除服务
func (m *ServiceMap) Remove(localId uint32) *Service {
	m.mu.Lock()
	defer m.mu.Unlock()

	service, exists := m.remotes[localId]
	if exists {
		delete(m.remotes, localId)
	}
	return service
}

// Count 获取活动服务数量
func (m *ServiceMap) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.remotes)
}

// End 结束并清空所有服务
func (m *ServiceMap) End() {
	m.mu.Lock()
	remotes := m.remotes
	m.remotes = make(map[uint32]*Service)
	m.mu.Unlock()

	for _, service := range remotes {
		service.End()
	}
}
