package matchcore

import "errors"

// Error taxonomy. PoolExhausted is fatal: it signals an undersized
// configuration, not a user mistake. InvalidOrder is rejected at the API
// boundary before any mutation happens. UnknownOrder is deliberately not
// surfaced as an error -- Cancel is idempotent so a cancel racing a fill
// degrades to a no-op instead of forcing callers to special-case it.
var (
	ErrPoolExhausted  = errors.New("matchcore: pool exhausted")
	ErrInvalidOrder   = errors.New("matchcore: invalid order")
	ErrInvalidPrice   = errors.New("matchcore: invalid price sentinel")
	ErrPriceCollision = errors.New("matchcore: price collides with another active level at the same table index")
)
