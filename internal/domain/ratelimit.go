package domain

import "time"

// RateLimitInfo describes the state of a client's request window
type RateLimitInfo struct {
	Key          string        `json:"-"`
	RequestCount int64         `json:"request_count"`
	Limit        int64         `json:"limit"`
	WindowStart  time.Time     `json:"window_start"`
	TTL          time.Duration `json:"ttl"`
	IsAllowed    bool          `json:"is_allowed"`
}

// Remaining returns how many requests are left in the window
func (r *RateLimitInfo) Remaining() int64 {
	if r.RequestCount >= r.Limit {
		return 0
	}
	return r.Limit - r.RequestCount
}
