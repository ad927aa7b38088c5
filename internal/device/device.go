// Package device derives the identifier that binds a credential record to
// this machine.
package device

import (
	"strconv"
	"sync"

	"github.com/google/uuid"
)

var (
	once   sync.Once
	cached string
)

// ID returns the machine identifier: the 48-bit hardware address of the first
// usable network interface rendered as a decimal integer. When no interface
// is available the uuid package falls back to a random node, which stays
// stable for the life of the process.
func ID() string {
	once.Do(func() {
		cached = FromNode(uuid.NodeID())
	})
	return cached
}

// FromNode renders a node identifier (up to 6 bytes, big-endian) as decimal.
func FromNode(node []byte) string {
	var value uint64
	for i, b := range node {
		if i >= 6 {
			break
		}
		value = value<<8 | uint64(b)
	}
	return strconv.FormatUint(value, 10)
}
