package mvcc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVisibilityTable(t *testing.T) {
	cases := []struct {
		name    string
		build   func(c *Chain)
		reader  Transaction
		visible bool
	}{
		{
			name:    "own pending insert is visible to self",
			build:   func(c *Chain) { c.AppendPending(0, 1, 7) },
			reader:  Transaction{ID: 7, StartTime: 10},
			visible: true,
		},
		{
			name:    "pending insert invisible to others",
			build:   func(c *Chain) { c.AppendPending(0, 1, 7) },
			reader:  Transaction{ID: 8, StartTime: 10},
			visible: false,
		},
		{
			name: "committed insert visible after commit time",
			build: func(c *Chain) {
				c.AppendPending(0, 1, 7)
				c.CommitAppend(0, 1, 25)
			},
			reader:  Transaction{ID: 0, StartTime: 25},
			visible: true,
		},
		{
			name: "committed insert invisible before commit time",
			build: func(c *Chain) {
				c.AppendPending(0, 1, 7)
				c.CommitAppend(0, 1, 25)
			},
			reader:  Transaction{ID: 0, StartTime: 20},
			visible: false,
		},
		{
			name: "own pending delete hides the row from self",
			build: func(c *Chain) {
				c.AppendCommitted(0, 1, 1)
				c.DeleteRows([]int{0}, 7, 0)
			},
			reader:  Transaction{ID: 7, StartTime: 50},
			visible: false,
		},
		{
			name: "pending delete stays visible to other readers",
			build: func(c *Chain) {
				c.AppendCommitted(0, 1, 1)
				c.DeleteRows([]int{0}, 7, 0)
			},
			reader:  Transaction{ID: 8, StartTime: 50},
			visible: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewChain(4)
			tc.build(c)
			assert.Equal(t, tc.visible, c.Visible(0, tc.reader))
		})
	}
}
