package forwarder

import "time"

// Report is the heartbeat body posted to the status page.
type Report struct {
	Replica  string `json:"replica"`
	Interval uint64 `json:"interval"`
	Load     Load   `json:"load"`
}

// Load carries the normalised host load.
type Load struct {
	CPU float64 `json:"cpu"`
	RAM float64 `json:"ram"`
}

// NewReport builds a Report, truncating interval to whole seconds.
func NewReport(replica string, interval time.Duration, cpu, ram float64) Report {
	return Report{
		Replica:  replica,
		Interval: uint64(interval / time.Second),
		Load: Load{
			CPU: cpu,
			RAM: ram,
		},
	}
}

// ReportURL returns the endpoint a probe/node pair reports to.
// The trailing slash is part of the route.
func ReportURL(baseURL, probeID, nodeID string) string {
	return baseURL + "/reporter/" + probeID + "/" + nodeID + "/"
}
