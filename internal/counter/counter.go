// Package counter reads cumulative per-interface byte counters from the OS.
package counter

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/theirongolddev/dataneko/internal/model"
)

// Reader is the contract the usage recorder depends on.
// Implementations report all-zero counters on read failure.
type Reader interface {
	ReadCounters() model.Counters
	SystemUptime() float64
}

// Classifier maps interface names to the WiFi or WWAN stream.
type Classifier struct {
	WifiPrefixes []string
	WWANPrefixes []string
}

// DefaultClassifier matches common Linux and Android interface names.
func DefaultClassifier() Classifier {
	return Classifier{
		WifiPrefixes: []string{"wl", "wlan"},
		WWANPrefixes: []string{"wwan", "rmnet", "ppp", "ccmni"},
	}
}

type stream int

const (
	streamNone stream = iota
	streamWifi
	streamWWAN
)

func (c Classifier) classify(name string) stream {
	for _, p := range c.WifiPrefixes {
		if p != "" && strings.HasPrefix(name, p) {
			return streamWifi
		}
	}
	for _, p := range c.WWANPrefixes {
		if p != "" && strings.HasPrefix(name, p) {
			return streamWWAN
		}
	}
	return streamNone
}

// ProcReader reads counters from a procfs mount (normally /proc).
type ProcReader struct {
	procDir    string
	classifier Classifier
	logger     *slog.Logger
}

// NewProcReader returns a reader rooted at procDir.
func NewProcReader(procDir string, c Classifier, logger *slog.Logger) *ProcReader {
	if procDir == "" {
		procDir = "/proc"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcReader{procDir: procDir, classifier: c, logger: logger}
}

// ReadCounters sums rx+tx bytes per stream from net/dev.
func (r *ProcReader) ReadCounters() model.Counters {
	f, err := os.Open(filepath.Join(r.procDir, "net", "dev"))
	if err != nil {
		r.logger.Warn("reading interface counters", slog.Any("error", err))
		return model.Counters{}
	}
	defer func() { _ = f.Close() }()

	c, err := ParseNetDev(f, r.classifier)
	if err != nil {
		r.logger.Warn("parsing interface counters", slog.Any("error", err))
		return model.Counters{}
	}
	return c
}

// SystemUptime returns seconds since boot, or 0 on failure.
func (r *ProcReader) SystemUptime() float64 {
	data, err := os.ReadFile(filepath.Join(r.procDir, "uptime"))
	if err != nil {
		r.logger.Warn("reading uptime", slog.Any("error", err))
		return 0
	}
	up, err := ParseUptime(string(data))
	if err != nil {
		r.logger.Warn("parsing uptime", slog.Any("error", err))
		return 0
	}
	return up
}

// ParseNetDev parses the /proc/net/dev table.
//
//	Inter-|   Receive                            |  Transmit
//	 face |bytes    packets errs drop ...        |bytes    packets ...
//	wlan0: 1234 ...
func ParseNetDev(r io.Reader, c Classifier) (model.Counters, error) {
	var out model.Counters
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue // header lines
		}
		name := strings.TrimSpace(line[:colon])
		fields := strings.Fields(line[colon+1:])
		if len(fields) < 9 {
			return model.Counters{}, fmt.Errorf("interface %s: expected at least 9 fields, got %d", name, len(fields))
		}

		s := c.classify(name)
		if s == streamNone {
			continue
		}

		rx, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return model.Counters{}, fmt.Errorf("interface %s rx bytes: %w", name, err)
		}
		tx, err := strconv.ParseUint(fields[8], 10, 64)
		if err != nil {
			return model.Counters{}, fmt.Errorf("interface %s tx bytes: %w", name, err)
		}

		switch s {
		case streamWifi:
			out.WifiReceivedBytes += rx
			out.WifiSentBytes += tx
		case streamWWAN:
			out.WWANReceivedBytes += rx
			out.WWANSentBytes += tx
		}
	}
	if err := sc.Err(); err != nil {
		return model.Counters{}, err
	}
	return out, nil
}

// ParseUptime parses the first field of /proc/uptime.
func ParseUptime(s string) (float64, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty uptime")
	}
	return strconv.ParseFloat(fields[0], 64)
}
