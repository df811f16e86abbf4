package counter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleNetDev = `Inter-|   Receive                                                |  Transmit
 face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed
    lo: 9000      10    0    0    0     0          0         0     9000      10    0    0    0     0       0          0
 wlan0: 1000      10    0    0    0     0          0         0      200       5    0    0    0     0       0          0
rmnet_data0: 300   3    0    0    0     0          0         0       50       1    0    0    0     0       0          0
wwan0:   20        1    0    0    0     0          0         0        5       1    0    0    0     0       0          0
  eth0: 7777      10    0    0    0     0          0         0     7777      10    0    0    0     0       0          0
`

func TestParseNetDev_ClassifiesInterfaces(t *testing.T) {
	c, err := ParseNetDev(strings.NewReader(sampleNetDev), DefaultClassifier())
	require.NoError(t, err)

	require.Equal(t, uint64(1000), c.WifiReceivedBytes)
	require.Equal(t, uint64(200), c.WifiSentBytes)
	require.Equal(t, uint64(320), c.WWANReceivedBytes)
	require.Equal(t, uint64(55), c.WWANSentBytes)
	require.Equal(t, uint64(1200), c.Wifi())
	require.Equal(t, uint64(375), c.WWAN())
}

func TestParseNetDev_RejectsTruncatedLine(t *testing.T) {
	_, err := ParseNetDev(strings.NewReader("wlan0: 1 2 3\n"), DefaultClassifier())
	require.Error(t, err)
}

func TestProcReader_FailureReadsZero(t *testing.T) {
	r := NewProcReader(t.TempDir(), DefaultClassifier(), nil)
	require.True(t, r.ReadCounters().IsZero())
	require.Zero(t, r.SystemUptime())
}

func TestProcReader_ReadsFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "net"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "net", "dev"), []byte(sampleNetDev), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "uptime"), []byte("12345.67 54321.00\n"), 0o600))

	r := NewProcReader(dir, DefaultClassifier(), nil)
	require.Equal(t, uint64(1200), r.ReadCounters().Wifi())
	require.InDelta(t, 12345.67, r.SystemUptime(), 1e-9)
}
