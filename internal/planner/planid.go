package planner

import (
	"encoding/hex"
	"io"
	"sync"

	"github.com/google/uuid"
)

const (
	// PlanIDPrefix starts every generated plan id.
	PlanIDPrefix = "plan_"

	// planIDHexLen is the number of hex characters kept from the UUID (48 bits).
	planIDHexLen = 12
)

// IDGenerator issues plan identifiers. Implementations must be safe for
// concurrent use.
type IDGenerator interface {
	NewPlanID() string
}

// IDGeneratorFunc adapts a plain function to IDGenerator.
type IDGeneratorFunc func() string

// NewPlanID implements IDGenerator.
func (f IDGeneratorFunc) NewPlanID() string { return f() }

// UUIDGenerator derives plan ids from random (version 4) UUIDs.
// No registry of issued ids is kept; uniqueness is probabilistic.
type UUIDGenerator struct {
	mu   sync.Mutex
	rand io.Reader
}

// NewUUIDGenerator creates a generator reading randomness from r.
// A nil reader uses the uuid package's default source.
func NewUUIDGenerator(r io.Reader) *UUIDGenerator {
	return &UUIDGenerator{rand: r}
}

// NewPlanID returns "plan_" followed by 12 lowercase hex characters.
func (g *UUIDGenerator) NewPlanID() string {
	id := g.newUUID()
	return PlanIDPrefix + hex.EncodeToString(id[:])[:planIDHexLen]
}

func (g *UUIDGenerator) newUUID() uuid.UUID {
	if g == nil || g.rand == nil {
		return uuid.New()
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := uuid.NewRandomFromReader(g.rand)
	if err != nil {
		// An exhausted or failing reader falls back to the default source
		return uuid.New()
	}
	return id
}
