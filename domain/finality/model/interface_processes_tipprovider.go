package model

import "github.com/dynastynet/finalityd/domain/finality/model/externalapi"

// TipProvider returns the tip of the main chain
type TipProvider interface {
	Tip() (*externalapi.DomainHash, error)
}
