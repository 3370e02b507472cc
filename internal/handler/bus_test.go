package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addBusBody(overrides map[string]interface{}) string {
	m := map[string]interface{}{
		"bus_id":         "BUS100",
		"name":           "Night Express",
		"number":         "KA-01 AB 1234",
		"source":         "Bangalore",
		"destination":    "Hyderabad",
		"travel_date":    "2026-09-15",
		"departure_time": "21:30",
		"fare_per_seat":  550.0,
		"total_seats":    40,
	}
	for k, v := range overrides {
		m[k] = v
	}
	b, _ := json.Marshal(m)
	return string(b)
}

func TestAddBusValidation(t *testing.T) {
	cases := []struct {
		name      string
		overrides map[string]interface{}
	}{
		{"bad bus_id prefix", map[string]interface{}{"bus_id": "TRAIN1"}},
		{"bus_id without digits", map[string]interface{}{"bus_id": "BUS"}},
		{"empty name", map[string]interface{}{"name": "  "}},
		{"bad number", map[string]interface{}{"number": "no/slashes"}},
		{"missing source", map[string]interface{}{"source": ""}},
		{"missing destination", map[string]interface{}{"destination": ""}},
		{"bad travel_date", map[string]interface{}{"travel_date": "15-09-2026"}},
		{"bad departure_time", map[string]interface{}{"departure_time": "9pm"}},
		{"hour out of range", map[string]interface{}{"departure_time": "25:00"}},
		{"negative fare", map[string]interface{}{"fare_per_seat": -1.0}},
		{"negative seats", map[string]interface{}{"total_seats": -4}},
	}
	h := &BusHandler{}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(t, http.MethodPost, "/v1/buses", addBusBody(tc.overrides))
			require.NoError(t, h.AddBus(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestSearchBusesRequiresRoute(t *testing.T) {
	h := &BusHandler{}

	c, rec := newTestContext(t, http.MethodGet, "/v1/search/buses?source=Bangalore", "")
	require.NoError(t, h.SearchBuses(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newTestContext(t, http.MethodGet, "/v1/search/buses?destination=Hyderabad", "")
	require.NoError(t, h.SearchBuses(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchBusesRejectsBadDate(t *testing.T) {
	h := &BusHandler{}
	target := fmt.Sprintf("/v1/search/buses?source=%s&destination=%s&date=%s",
		"Bangalore", "Hyderabad", "tomorrow")
	c, rec := newTestContext(t, http.MethodGet, target, "")
	require.NoError(t, h.SearchBuses(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBusInputPatterns(t *testing.T) {
	assert.True(t, busIDPattern.MatchString("BUS1"))
	assert.True(t, busIDPattern.MatchString("BUS2043"))
	assert.False(t, busIDPattern.MatchString("bus1"))
	assert.False(t, busIDPattern.MatchString("BUS1X"))

	assert.True(t, departurePattern.MatchString("00:00"))
	assert.True(t, departurePattern.MatchString("23:59"))
	assert.True(t, departurePattern.MatchString("9:05"))
	assert.False(t, departurePattern.MatchString("24:00"))
	assert.False(t, departurePattern.MatchString("12:60"))
}
