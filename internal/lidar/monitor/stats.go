package monitor

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// StatsSnapshot represents a snapshot of reply statistics
type StatsSnapshot struct {
	Accepted     int64     `json:"accepted"`
	Rejected     int64     `json:"rejected"`
	LastAccepted time.Time `json:"last_accepted"`
	LastRejected time.Time `json:"last_rejected"`
	Uptime       string    `json:"uptime"`
}

// ReplyStats counts angle compensation replies with thread-safe operations.
// It satisfies serialmux.ReplyRecorder.
type ReplyStats struct {
	mu           sync.Mutex
	accepted     int64
	rejected     int64
	lastAccepted time.Time
	lastRejected time.Time
	startTime    time.Time
}

// NewReplyStats creates a new ReplyStats instance
func NewReplyStats() *ReplyStats {
	return &ReplyStats{startTime: time.Now()}
}

// AddAccepted records a reply that updated the calibration.
func (rs *ReplyStats) AddAccepted() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.accepted++
	rs.lastAccepted = time.Now()
}

// AddRejected records a reply that failed to decode.
func (rs *ReplyStats) AddRejected() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.rejected++
	rs.lastRejected = time.Now()
}

// GetUptime returns the time since the stats were created
func (rs *ReplyStats) GetUptime() time.Duration {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return time.Since(rs.startTime)
}

// Snapshot returns a copy of the current counters.
func (rs *ReplyStats) Snapshot() StatsSnapshot {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return StatsSnapshot{
		Accepted:     rs.accepted,
		Rejected:     rs.rejected,
		LastAccepted: rs.lastAccepted,
		LastRejected: rs.lastRejected,
		Uptime:       time.Since(rs.startTime).Round(time.Second).String(),
	}
}

// LogStats logs the reply counters when any reply has been seen.
func (rs *ReplyStats) LogStats() {
	s := rs.Snapshot()
	if s.Accepted == 0 && s.Rejected == 0 {
		return
	}
	msg := fmt.Sprintf("Angle compensation replies: %s accepted", FormatWithCommas(s.Accepted))
	if s.Rejected > 0 {
		msg += fmt.Sprintf(", %s rejected", FormatWithCommas(s.Rejected))
	}
	log.Print(msg)
}

// FormatWithCommas formats a number with thousands separators
func FormatWithCommas(n int64) string {
	str := fmt.Sprintf("%d", n)
	if len(str) <= 3 {
		return str
	}

	result := ""
	for i, char := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(char)
	}
	return result
}
