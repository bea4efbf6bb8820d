package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "computernetworks", NormalizeName("  Computer\tNetworks \n"))
	require.Equal(t, "操作系统", NormalizeName("操作 系统"))
}

func TestResembles(t *testing.T) {
	cases := []struct {
		name     string
		query    string
		expected bool
	}{
		{"操作系统", "", true},
		{"操作系统", "操作", true},
		{"Computer Networks", "networks", true},
		{"Computer Networks", "computer  networks", true},
		{"Computer Networks", "Computer Netwroks", true},
		{"Computer Networks", "Linear Algebra", false},
	}
	for _, test := range cases {
		require.Equal(t, test.expected, Resembles(test.name, test.query), "%q ~ %q", test.name, test.query)
	}
}
