package handler

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// cpuSampler turns the cumulative counters of /proc/stat into a usage
// percentage over the interval since the previous sample.
type cpuSampler struct {
	idle, total uint64
}

func (s *cpuSampler) sample() float64 {
	idle, total, err := readCPUTicks()
	if err != nil || total <= s.total {
		return 0
	}
	busy := 1 - float64(idle-s.idle)/float64(total-s.total)
	s.idle, s.total = idle, total
	return busy * 100
}

// readCPUTicks sums the aggregate "cpu" line; idle is its fourth counter.
func readCPUTicks() (idle, total uint64, err error) {
	f, err := os.Open("/proc/stat")
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		return 0, 0, fmt.Errorf("empty /proc/stat")
	}
	fields := strings.Fields(sc.Text())
	if len(fields) < 5 || fields[0] != "cpu" {
		return 0, 0, fmt.Errorf("unexpected /proc/stat line %q", sc.Text())
	}
	for i, field := range fields[1:] {
		v, _ := strconv.ParseUint(field, 10, 64)
		total += v
		if i == 3 {
			idle = v
		}
	}
	return idle, total, nil
}

// readProcKeys reads "Key:   value kB" lines and returns the requested
// values in bytes. Missing keys are absent from the map.
func readProcKeys(path string, keys ...string) (map[string]uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	want := make(map[string]bool, len(keys))
	for _, k := range keys {
		want[k] = true
	}

	out := make(map[string]uint64, len(keys))
	sc := bufio.NewScanner(f)
	for sc.Scan() && len(out) < len(keys) {
		name, rest, ok := strings.Cut(sc.Text(), ":")
		if !ok || !want[name] {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		v, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			continue
		}
		if len(fields) > 1 && fields[1] == "kB" {
			v *= 1024
		}
		out[name] = v
	}
	return out, sc.Err()
}

func readLoadAvg() (float64, error) {
	data, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return 0, err
	}
	first, _, _ := strings.Cut(string(data), " ")
	return strconv.ParseFloat(first, 64)
}
