package uid

import (
	"crypto/sha256"
	"os"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
)

// Snowflake generates time-ordered int64 identifiers.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a generator whose node number is derived from the
// environment (SNOWFLAKE_NODE) or, failing that, hashed from the hostname so
// that replicas on different machines pick distinct nodes.
func NewSnowflake() (*Snowflake, error) {
	nodeNum := int64(-1)

	if v := strings.TrimSpace(os.Getenv("SNOWFLAKE_NODE")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 && n < 1024 {
			nodeNum = n
		}
	}

	if nodeNum < 0 {
		host, err := os.Hostname()
		if err != nil {
			host = "localhost"
		}
		sum := sha256.Sum256([]byte(host))
		nodeNum = int64(sum[0])<<2 | int64(sum[1])>>6 // 10-bit node space
	}

	node, err := snowflake.NewNode(nodeNum)
	if err != nil {
		return nil, err
	}

	return &Snowflake{node: node}, nil
}

// Generate returns a new snowflake ID.
func (s *Snowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
