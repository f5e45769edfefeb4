package scheduler

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"trend-audio-remux/internal/logging"
)

const (
	monitorSpec = "*/30 * * * * *"

	memWarnThresholdBytes  = 600 * 1024 * 1024
	goroutineWarnThreshold = 500
	alertCooldown          = 10 * time.Minute
)

type Alerter interface {
	Alert(text string)
}

type Usage struct {
	HeapBytes  uint64
	SysBytes   uint64
	Goroutines int
}

// ResourceMonitor warns when heap size or goroutine count crosses a threshold.
type ResourceMonitor struct {
	log     *logging.Logger
	alerter Alerter

	read func() Usage
	now  func() time.Time

	mu         sync.Mutex
	lastWarnAt time.Time
}

// NewResourceMonitor builds a monitor. alerter may be nil.
func NewResourceMonitor(alerter Alerter, log *logging.Logger) *ResourceMonitor {
	return &ResourceMonitor{log: log, alerter: alerter, read: readUsage, now: time.Now}
}

func readUsage() Usage {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return Usage{HeapBytes: ms.HeapAlloc, SysBytes: ms.Sys, Goroutines: runtime.NumGoroutine()}
}

// Check samples usage once and warns at most once per cooldown window.
func (m *ResourceMonitor) Check() {
	m.check()
}

func (m *ResourceMonitor) check() bool {
	u := m.read()
	if u.HeapBytes <= memWarnThresholdBytes && u.Goroutines < goroutineWarnThreshold {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if now := m.now(); now.Sub(m.lastWarnAt) > alertCooldown {
		m.lastWarnAt = now
	} else {
		return false
	}

	heapMB, sysMB := u.HeapBytes/(1024*1024), u.SysBytes/(1024*1024)
	m.log.Warnf("memwatch: WARNING heap=%dMB sys=%dMB goroutines=%d", heapMB, sysMB, u.Goroutines)
	if m.alerter != nil {
		m.alerter.Alert(fmt.Sprintf("⚠️ High resource usage\nHeap: %d MB (limit %d MB)\nSys: %d MB\nGoroutines: %d (limit %d)",
			heapMB, memWarnThresholdBytes/(1024*1024), sysMB, u.Goroutines, goroutineWarnThreshold))
	}
	runtime.GC()
	return true
}
