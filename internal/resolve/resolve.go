package resolve

import "github.com/diamonddraft/diamond-draft/internal/model"

// Missing describes a request for a bundle the player does not have.
type Missing struct {
	PlayerID int
	Name     string
	Key      model.SeasonKey
}

// Resolver picks the bundle for a (season, variant) selector. A nil *Resolver
// is valid and resolves silently.
type Resolver struct {
	// OnMissing is called for every zero-filled resolution. It must not
	// influence the result.
	OnMissing func(Missing)
}

// New returns a resolver reporting missing bundles to onMissing (may be nil).
func New(onMissing func(Missing)) *Resolver {
	return &Resolver{OnMissing: onMissing}
}

// Resolve returns the player's bundle for key, or a zero bundle when absent.
// Season 2024 ignores the variant.
func (r *Resolver) Resolve(p model.Player, key model.SeasonKey) model.StatBundle {
	key = key.Normalize()
	if b, ok := p.StatsBySeasonVariant[key]; ok {
		return b
	}
	if r != nil && r.OnMissing != nil {
		r.OnMissing(Missing{PlayerID: p.ID, Name: p.Name, Key: key})
	}
	return model.StatBundle{}
}
