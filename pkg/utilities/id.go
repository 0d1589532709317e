package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

var (
	nodeMu sync.Mutex
	nodes  = map[int64]*snowflake.Node{}
)

// NewSnowflakeID generates a snowflake ID string using a node ID from
// the environment variable SNOWFLAKE_NODE. If node setup fails it falls
// back to generating a KSUID string to ensure a unique ID is returned.
func NewSnowflakeID() string {
	nodeEnv := os.Getenv("SNOWFLAKE_NODE")
	if nodeEnv == "" {
		return NewSnowflakeIDWithNode(1)
	}
	nodeID, err := strconv.ParseInt(nodeEnv, 10, 64)
	if err != nil {
		return NewSnowflakeIDWithNode(1)
	}
	return NewSnowflakeIDWithNode(nodeID)
}

// NewSnowflakeIDWithNode generates a snowflake ID string using the provided node ID.
// Nodes are cached so IDs from the same node stay ordered and collision free.
// If the node cannot be initialized, it falls back to a KSUID string.
func NewSnowflakeIDWithNode(nodeID int64) string {
	nodeMu.Lock()
	defer nodeMu.Unlock()
	node, ok := nodes[nodeID]
	if !ok {
		var err error
		node, err = snowflake.NewNode(nodeID)
		if err != nil {
			return NewKSUID()
		}
		nodes[nodeID] = node
	}
	return node.Generate().String()
}
