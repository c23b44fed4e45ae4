package id

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID. Processes that
// never call Init get node 0 on first use.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

func ensureNode() {
	once.Do(func() {
		node, _ = snowflake.NewNode(0)
	})
}

// New generates a time-ordered int64 run ID.
func New() int64 {
	ensureNode()
	return node.Generate().Int64()
}

// NewString generates a run ID rendered in base 10, the form used for
// staging directory names and log fields.
func NewString() string {
	return strconv.FormatInt(New(), 10)
}

// Parse reads a base 10 run ID.
func Parse(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid run id %q", s)
	}
	return v, nil
}
