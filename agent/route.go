package agent

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// routeFile lists the kernel IPv4 routing table.
var routeFile = "/proc/net/route"

// rtfUp is the RTF_UP route flag.
const rtfUp = 0x1

// readDefaultRoute returns the interface of the default IPv4 route.
func readDefaultRoute() (string, error) {
	f, err := os.Open(routeFile)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", routeFile, err)
	}
	defer f.Close()
	return parseDefaultRoute(f)
}

// parseDefaultRoute picks the up route with destination and mask 0.0.0.0
// and the lowest metric.
func parseDefaultRoute(r io.Reader) (string, error) {
	s := bufio.NewScanner(r)

	best := ""
	bestMetric := -1
	header := true
	for s.Scan() {
		if header {
			header = false
			continue
		}
		parts := strings.Fields(s.Text())
		// Iface Destination Gateway Flags RefCnt Use Metric Mask ...
		if len(parts) < 8 {
			continue
		}
		if parts[1] != "00000000" || parts[7] != "00000000" {
			continue
		}
		flags, err := strconv.ParseUint(parts[3], 16, 32)
		if err != nil || flags&rtfUp == 0 {
			continue
		}
		metric, err := strconv.Atoi(parts[6])
		if err != nil {
			continue
		}
		if bestMetric < 0 || metric < bestMetric {
			best, bestMetric = parts[0], metric
		}
	}
	if err := s.Err(); err != nil {
		return "", fmt.Errorf("read routes: %w", err)
	}
	if best == "" {
		return "", fmt.Errorf("no default route")
	}
	return best, nil
}
