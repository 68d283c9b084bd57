package device

import (
	"github.com/jamesainslie/spinkeep/pkg/spinkeep/types"
)

// Probe opens path the same way Register does, records its size or the
// failure, and closes it again.
func Probe(path string) types.DeviceInfo {
	return ProbeWith(Open, path)
}

// ProbeWith is Probe with a custom opener.
func ProbeWith(open OpenFunc, path string) types.DeviceInfo {
	info := types.DeviceInfo{Path: path}

	e, err := open(path)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	defer e.Close()

	info.Size = e.Size()
	info.SizeHuman = types.FormatSize(info.Size)
	return info
}

// ProbeAll probes every path in order.
func ProbeAll(paths []string) []types.DeviceInfo {
	out := make([]types.DeviceInfo, 0, len(paths))
	for _, p := range paths {
		out = append(out, Probe(p))
	}
	return out
}
