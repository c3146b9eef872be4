package pixoo

import (
	"context"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"
)

// DiscoveredDevice represents a found Pixoo device.
type DiscoveredDevice struct {
	Name string
	IP   string
}

// ProgressFunc is called during scanning to report progress.
type ProgressFunc func(current, total int)

// ProbeFunc reports whether ip answers like a Pixoo.
type ProbeFunc func(ctx context.Context, ip string) bool

// Scanner sweeps a /24 for Pixoo devices.
type Scanner struct {
	// Subnet is the first three octets, e.g. "192.168.1". Detected when empty.
	Subnet string
	// BatchSize is the number of concurrent probes.
	BatchSize int
	// Timeout bounds each probe.
	Timeout time.Duration
	// Probe defaults to a Channel/GetIndex request on port 80.
	Probe ProbeFunc
}

// ScanForDevices scans the local subnet with default settings.
func ScanForDevices(ctx context.Context, onProgress ProgressFunc) ([]DiscoveredDevice, error) {
	return (&Scanner{}).Scan(ctx, onProgress)
}

// Scan probes hosts .1 to .254 in batches. Devices are sorted by IP. On
// cancellation it returns what was found so far with the context error.
func (s *Scanner) Scan(ctx context.Context, onProgress ProgressFunc) ([]DiscoveredDevice, error) {
	subnet := s.Subnet
	if subnet == "" {
		var err error
		if subnet, err = getLocalSubnet(); err != nil {
			return nil, err
		}
	}
	batchSize := s.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	probe := s.Probe
	if probe == nil {
		probe = func(ctx context.Context, ip string) bool { return probePixoo(ctx, ip, timeout) }
	}

	var devices []DiscoveredDevice
	var mu sync.Mutex
	var wg sync.WaitGroup
	const total = 254

	for start := 1; start <= total; start += batchSize {
		end := min(start+batchSize-1, total)

		for i := start; i <= end; i++ {
			wg.Add(1)
			go func(ip string) {
				defer wg.Done()

				probeCtx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()
				if probe(probeCtx, ip) {
					mu.Lock()
					devices = append(devices, DiscoveredDevice{Name: "Pixoo", IP: ip})
					mu.Unlock()
				}
			}(fmt.Sprintf("%s.%d", subnet, i))
		}
		wg.Wait()

		if onProgress != nil {
			onProgress(end, total)
		}

		if err := ctx.Err(); err != nil {
			sortDevices(devices)
			return devices, err
		}
	}

	sortDevices(devices)
	return devices, nil
}

func sortDevices(devices []DiscoveredDevice) {
	sort.Slice(devices, func(i, j int) bool {
		a, b := net.ParseIP(devices[i].IP).To4(), net.ParseIP(devices[j].IP).To4()
		if a == nil || b == nil {
			return devices[i].IP < devices[j].IP
		}
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
}

// getLocalSubnet returns the local subnet (e.g., "192.168.1").
func getLocalSubnet() (string, error) {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "", fmt.Errorf("failed to get network interfaces: %w", err)
	}

	for _, iface := range interfaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipNet.IP.To4()
			if ip == nil || ip.IsLoopback() {
				continue
			}
			return fmt.Sprintf("%d.%d.%d", ip[0], ip[1], ip[2]), nil
		}
	}

	return "", fmt.Errorf("could not determine local network")
}

// probePixoo checks if an IP hosts a Pixoo device.
func probePixoo(ctx context.Context, ip string, timeout time.Duration) bool {
	client := NewClient(ip)
	client.HTTPClient.Timeout = timeout

	_, err := client.sendCommand(ctx, PixooCommand{Command: "Channel/GetIndex"})
	return err == nil
}
