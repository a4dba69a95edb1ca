package imageurl

import (
	"strconv"
	"strings"
)

type ConnectionClass string

const (
	ConnSlow    ConnectionClass = "slow"
	ConnFast    ConnectionClass = "fast"
	ConnUnknown ConnectionClass = "unknown"
)

const slowDownlinkMbps = 1.5

// ClassifyConnection maps the ECT, Save-Data and Downlink client hints to a
// connection class. Missing hints yield ConnUnknown.
func ClassifyConnection(ect, saveData, downlink string) ConnectionClass {
	if strings.EqualFold(strings.TrimSpace(saveData), "on") {
		return ConnSlow
	}
	switch strings.ToLower(strings.TrimSpace(ect)) {
	case "slow-2g", "2g", "3g":
		return ConnSlow
	case "4g":
		return ConnFast
	}
	if d, err := strconv.ParseFloat(strings.TrimSpace(downlink), 64); err == nil && d > 0 {
		if d < slowDownlinkMbps {
			return ConnSlow
		}
		return ConnFast
	}
	return ConnUnknown
}

func (c ConnectionClass) Slow() bool { return c == ConnSlow }
