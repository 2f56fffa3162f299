package multiset

import (
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/kaspanet/go-muhash"
)

// Multiset is a MuHash commitment to a multiset of byte strings. Its hash
// doesn't depend on the order in which elements were added.
type Multiset struct {
	ms *muhash.MuHash
}

// New returns an empty Multiset.
func New() *Multiset {
	return &Multiset{ms: muhash.NewMuHash()}
}

func (m *Multiset) Add(element []byte) {
	m.ms.Add(element)
}

// Hash returns the commitment to the current elements.
func (m *Multiset) Hash() *externalapi.DomainHash {
	finalized := [externalapi.DomainHashSize]byte(m.ms.Finalize())
	return externalapi.NewDomainHashFromByteArray(&finalized)
}

// Clone returns a Multiset that evolves independently of m.
func (m *Multiset) Clone() *Multiset {
	return &Multiset{ms: m.ms.Clone()}
}
