package finality

import (
	"github.com/dynastynet/finalityd/domain/blockchain/behavior"
	"github.com/dynastynet/finalityd/domain/dagconfig"
	"github.com/dynastynet/finalityd/domain/finality/datastructures/blockindex"
	"github.com/dynastynet/finalityd/domain/finality/datastructures/finalitystatestore"
	"github.com/dynastynet/finalityd/domain/finality/model"
	"github.com/dynastynet/finalityd/domain/finality/processes/rewardlogic"
	"github.com/dynastynet/finalityd/domain/finality/processes/staterepository"
	"github.com/dynastynet/finalityd/infrastructure/db/database"
)

const defaultStateCacheSize = 200

var finalityBucket = database.MakeBucket([]byte("finality"))

// Factory instantiates new Finalities
type Factory interface {
	NewFinality(params *dagconfig.Params, db database.Database, blockDB model.BlockDB) (Finality, error)
	SetStateCacheSize(size int)
}

type factory struct {
	stateCacheSize int
}

// NewFactory creates a new Finality factory
func NewFactory() Factory {
	return &factory{stateCacheSize: defaultStateCacheSize}
}

// NewFinality instantiates a new Finality storing its states in db and
// reading historical blocks from blockDB.
func (f *factory) NewFinality(params *dagconfig.Params, db database.Database, blockDB model.BlockDB) (Finality, error) {
	// Data Structures
	blockIndex := blockindex.New()
	stateStore, err := finalitystatestore.New(db, finalityBucket, &params.Finalization, f.stateCacheSize)
	if err != nil {
		return nil, err
	}

	// Processes
	stateRepository, err := staterepository.New(
		params,
		blockIndex,
		blockDB,
		stateStore)
	if err != nil {
		return nil, err
	}
	rewardLogic := rewardlogic.New(
		&params.Finalization,
		behavior.New(params),
		stateRepository,
		blockIndex,
		blockDB)

	return &finality{
		params:          params,
		blockIndex:      blockIndex,
		stateRepository: stateRepository,
		rewardLogic:     rewardLogic,
	}, nil
}

func (f *factory) SetStateCacheSize(size int) {
	f.stateCacheSize = size
}
