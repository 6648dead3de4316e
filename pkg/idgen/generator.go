package idgen

import (
	"fmt"
	"sync/atomic"

	"github.com/bwmarrin/snowflake"
)

// Generator hands out unique, increasing 64-bit ids.
type Generator interface {
	GenerateID() int64
}

// SnowflakeGenerator implements Generator with Twitter Snowflake ids. Ids from one node are
// time-ordered, which keeps search attempt ids sortable in logs.
type SnowflakeGenerator struct {
	node *snowflake.Node
}

// NewSnowflakeGenerator initializes a new ID generator.
// nodeID must be unique per server instance (0-1023) to prevent collisions.
func NewSnowflakeGenerator(nodeID int64) (*SnowflakeGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("idgen: snowflake node %d: %w", nodeID, err)
	}
	return &SnowflakeGenerator{node: node}, nil
}

// GenerateID is safe for concurrent use; snowflake.Node serializes internally.
func (g *SnowflakeGenerator) GenerateID() int64 {
	return g.node.Generate().Int64()
}

// Sequence is a counter-backed Generator for tests and single-process tools.
type Sequence struct {
	last atomic.Int64
}

func (s *Sequence) GenerateID() int64 {
	return s.last.Add(1)
}
