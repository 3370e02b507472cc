package queue

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestHandleMessageAppendsLogLine(t *testing.T) {
	chdirTemp(t)

	body := []byte(`{
		"booking_id": "b-1",
		"bus_id": "BUS7",
		"bus_name": "Night Express",
		"source": "Bangalore",
		"destination": "Hyderabad",
		"travel_date": "2026-09-15",
		"user_id": 42,
		"seats": ["R1U1", "R1L1"],
		"total_fare": 1100,
		"confirmed_at": "2026-08-28T10:00:00Z"
	}`)
	require.NoError(t, handleMessage(body))

	data, err := os.ReadFile(filepath.Join("logs", "booking.log"))
	require.NoError(t, err)
	line := string(data)
	assert.Contains(t, line, "booking_id=b-1")
	assert.Contains(t, line, "route=Bangalore->Hyderabad")
	assert.Contains(t, line, "seats=[R1U1,R1L1]")
	assert.Contains(t, line, "total=1100.00")
}

func TestHandleMessageRejectsBadJSON(t *testing.T) {
	chdirTemp(t)
	assert.Error(t, handleMessage([]byte("not json")))
}
