package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColumnName(t *testing.T) {
	cases := map[int]string{
		1:  "A",
		4:  "D",
		22: "V",
		26: "Z",
		27: "AA",
		52: "AZ",
		53: "BA",
	}
	for col, want := range cases {
		assert.Equal(t, want, columnName(col), "column %d", col)
	}
}
