package output

import "github.com/jamesainslie/spinkeep/pkg/spinkeep/types"

// document is the structure shared by the json and yaml formatters.
type document struct {
	Devices []types.DeviceInfo `json:"devices" yaml:"devices"`
	Meta    meta               `json:"meta" yaml:"meta"`
}

type meta struct {
	Window      int64  `json:"window" yaml:"window"`
	WindowHuman string `json:"window_human" yaml:"window_human"`
	Interval    string `json:"interval" yaml:"interval"`
	Usable      int    `json:"usable" yaml:"usable"`
	Total       int    `json:"total" yaml:"total"`
	TotalSize   int64  `json:"total_size" yaml:"total_size"`
}

func buildDocument(r *Result) document {
	devices := r.Devices
	if devices == nil {
		devices = []types.DeviceInfo{}
	}
	return document{
		Devices: devices,
		Meta: meta{
			Window:      r.Window,
			WindowHuman: types.FormatSize(r.Window),
			Interval:    r.Interval.String(),
			Usable:      r.Usable(),
			Total:       len(r.Devices),
			TotalSize:   r.TotalSize(),
		},
	}
}
