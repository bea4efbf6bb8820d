package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNow(t *testing.T) {
	now := Now()
	require.Equal(t, Location, now.Location())

	_, offset := now.Zone()
	require.Equal(t, int((8 * time.Hour).Seconds()), offset)
}

func TestParseSiteDate(t *testing.T) {
	cases := []struct {
		in     string
		expect time.Time
	}{
		{in: "2012-09-27", expect: time.Date(2012, 9, 27, 0, 0, 0, 0, Location)},
		{in: "2012-09-18 09:30", expect: time.Date(2012, 9, 18, 9, 30, 0, 0, Location)},
		{in: "2012-09-18 09:30:15", expect: time.Date(2012, 9, 18, 9, 30, 15, 0, Location)},
	}
	for _, test := range cases {
		parsed, err := ParseSiteDate(test.in)
		if err != nil {
			t.Fatal(err)
		}
		require.True(t, test.expect.Equal(parsed), "input %q gave %v", test.in, parsed)
	}

	_, err := ParseSiteDate("2012/09/27")
	require.Error(t, err)
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2012, 9, 25, 23, 50, 0, 0, Location)
	require.Equal(t, 2, DaysUntil(now, time.Date(2012, 9, 27, 0, 0, 0, 0, Location)))
	require.Equal(t, 0, DaysUntil(now, time.Date(2012, 9, 25, 8, 0, 0, 0, Location)))
	require.Equal(t, -1, DaysUntil(now, time.Date(2012, 9, 24, 23, 59, 0, 0, Location)))

	// 2012-09-25 17:00 UTC is already the 26th in Beijing.
	require.Equal(t, 1, DaysUntil(now, time.Date(2012, 9, 25, 17, 0, 0, 0, time.UTC)))
}
