package htmlutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{in: "Dune (2021)", out: "Dune (2021)"},
		{in: "  Paris,\n\t  Texas  ", out: "Paris, Texas"},
		{in: "Heat\u0000 (1995)", out: "Heat (1995)"},
		{in: "   ", out: ""},
	}
	for _, c := range cases {
		require.Equal(t, c.out, CleanText(c.in), "input %q", c.in)
	}
}
