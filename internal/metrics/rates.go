package metrics

import "time"

// NetRate is throughput derived from two cumulative network readings.
type NetRate struct {
	TxRate uint64 `json:"tx_rate" yaml:"tx_rate"` // Bytes/sec
	RxRate uint64 `json:"rx_rate" yaml:"rx_rate"` // Bytes/sec
}

// NetRates computes bytes/sec between two readings taken elapsed apart.
// Unavailable readings, a non-positive interval, or counters that went
// backwards (wrap or reset) yield zero.
func NetRates(prev, cur Result[NetUsage], elapsed time.Duration) NetRate {
	p, ok := prev.Get()
	if !ok {
		return NetRate{}
	}
	c, ok := cur.Get()
	if !ok {
		return NetRate{}
	}
	duration := elapsed.Seconds()
	if duration <= 0 {
		return NetRate{}
	}
	var r NetRate
	if c.BytesSent >= p.BytesSent {
		r.TxRate = uint64(float64(c.BytesSent-p.BytesSent) / duration)
	}
	if c.BytesRecv >= p.BytesRecv {
		r.RxRate = uint64(float64(c.BytesRecv-p.BytesRecv) / duration)
	}
	return r
}
