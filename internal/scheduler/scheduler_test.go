package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trend-audio-remux/internal/logging"
)

type fakeSweeper struct {
	calls   int
	gotTTL  time.Duration
	removed []string
	err     error
}

func (f *fakeSweeper) Sweep(ttl time.Duration) ([]string, error) {
	f.calls++
	f.gotTTL = ttl
	return f.removed, f.err
}

type recordingAlerter struct{ texts []string }

func (r *recordingAlerter) Alert(text string) { r.texts = append(r.texts, text) }

func TestNewRegistersJobs(t *testing.T) {
	sw := &fakeSweeper{}

	s, err := New(sw, time.Hour, "0 */10 * * * *", NewResourceMonitor(nil, logging.Discard()), logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, 2, s.Entries())

	s, err = New(sw, 0, "0 */10 * * * *", nil, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, 0, s.Entries(), "zero ttl disables the sweep")
}

func TestNewRejectsBadSchedule(t *testing.T) {
	_, err := New(&fakeSweeper{}, time.Hour, "every ten minutes", nil, logging.Discard())
	require.Error(t, err)
}

func TestSweepOnce(t *testing.T) {
	sw := &fakeSweeper{removed: []string{"/tmp/output_1.mp4", "/tmp/input_2.mp4"}}
	s, err := New(sw, 2*time.Hour, "0 */10 * * * *", nil, logging.Discard())
	require.NoError(t, err)

	assert.Equal(t, 2, s.SweepOnce())
	assert.Equal(t, 1, sw.calls)
	assert.Equal(t, 2*time.Hour, sw.gotTTL)

	sw.removed, sw.err = nil, errors.New("permission denied")
	assert.Equal(t, 0, s.SweepOnce())
}

func TestResourceMonitorWarnsWithCooldown(t *testing.T) {
	al := &recordingAlerter{}
	m := NewResourceMonitor(al, logging.Discard())
	now := time.Unix(1700000000, 0)
	m.now = func() time.Time { return now }

	m.read = func() Usage { return Usage{HeapBytes: 10 << 20, Goroutines: 20} }
	assert.False(t, m.check())

	m.read = func() Usage { return Usage{HeapBytes: 700 << 20, SysBytes: 900 << 20, Goroutines: 20} }
	assert.True(t, m.check())
	require.Len(t, al.texts, 1)
	assert.Contains(t, al.texts[0], "Heap: 700 MB")

	now = now.Add(time.Minute)
	assert.False(t, m.check(), "second warning inside the cooldown")

	now = now.Add(alertCooldown)
	m.read = func() Usage { return Usage{Goroutines: 800} }
	assert.True(t, m.check())
	assert.Len(t, al.texts, 2)
}
