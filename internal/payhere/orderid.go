package payhere

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// OrderIDPrefix prefixes every generated order id.
const OrderIDPrefix = "ORD-"

// OrderIDGenerator produces unique, time-ordered order ids.
type OrderIDGenerator struct {
	node *snowflake.Node
}

// NewOrderIDGenerator creates a generator for the given node id (0-1023).
// Distinct processes must use distinct node ids.
func NewOrderIDGenerator(nodeID int64) (*OrderIDGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("create snowflake node: %w", err)
	}
	return &OrderIDGenerator{node: node}, nil
}

// NewOrderID returns the next order id, e.g. ORD-1790000000000000000.
func (g *OrderIDGenerator) NewOrderID() string {
	return OrderIDPrefix + g.node.Generate().String()
}
