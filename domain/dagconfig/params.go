package dagconfig

import (
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/dynastynet/finalityd/domain/finality/utils/ufp64"
	"github.com/pkg/errors"
)

// NetworkID identifies a network.
type NetworkID uint32

// Network IDs of the default networks.
const (
	Mainnet NetworkID = 0x3ddcf71d
	Testnet NetworkID = 0xddb8af8f
	Regtest NetworkID = 0xdab5bffa
	Simnet  NetworkID = 0x374dcf1c
)

// Params defines a network by its parameters.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// Net identifies the network.
	Net NetworkID

	// GenesisBlock defines the first block of the chain.
	GenesisBlock *externalapi.DomainBlock

	// GenesisHash is the starting block hash.
	GenesisHash *externalapi.DomainHash

	// BaseSubsidy is the block reward before any reduction.
	BaseSubsidy uint64

	// SubsidyReductionInterval is the interval of blocks before the subsidy
	// is halved.
	SubsidyReductionInterval uint64

	// Finalization holds the finality gadget parameters.
	Finalization FinalizationParams

	// AllowParamsOverride specifies whether finalization parameters may be
	// overridden from the command line.
	AllowParamsOverride bool
}

const (
	sompiPerCoin = 100_000_000

	defaultBaseSubsidy = 50 * sompiPerCoin
)

var defaultFinalizerRewardRatio = ufp64.UFP64(40_000_000) // 0.4

// MainnetParams defines the network parameters for the main network.
var MainnetParams = Params{
	Name:                     "mainnet",
	Net:                      Mainnet,
	GenesisBlock:             &genesisBlock,
	GenesisHash:              genesisHash,
	BaseSubsidy:              defaultBaseSubsidy,
	SubsidyReductionInterval: 210_000,
	Finalization: FinalizationParams{
		EpochLength:            50,
		MinDepositSize:         10_000 * sompiPerCoin,
		DynastyActivationDelay: DefaultDynastyActivationDelay,
		FinalizerRewardRatio:   defaultFinalizerRewardRatio,
	},
}

// TestnetParams defines the network parameters for the test network.
var TestnetParams = Params{
	Name:                     "testnet",
	Net:                      Testnet,
	GenesisBlock:             &genesisBlock,
	GenesisHash:              genesisHash,
	BaseSubsidy:              defaultBaseSubsidy,
	SubsidyReductionInterval: 210_000,
	Finalization: FinalizationParams{
		EpochLength:            50,
		MinDepositSize:         1_000 * sompiPerCoin,
		DynastyActivationDelay: DefaultDynastyActivationDelay,
		FinalizerRewardRatio:   defaultFinalizerRewardRatio,
	},
}

// RegressionNetParams defines the network parameters for the regression
// test network.
var RegressionNetParams = Params{
	Name:                     "regtest",
	Net:                      Regtest,
	GenesisBlock:             &genesisBlock,
	GenesisHash:              genesisHash,
	BaseSubsidy:              defaultBaseSubsidy,
	SubsidyReductionInterval: 150,
	Finalization: FinalizationParams{
		EpochLength:            5,
		MinDepositSize:         1_500 * sompiPerCoin,
		DynastyActivationDelay: DefaultDynastyActivationDelay,
		FinalizerRewardRatio:   defaultFinalizerRewardRatio,
	},
	AllowParamsOverride: true,
}

// SimnetParams defines the network parameters for the simulation test
// network.
var SimnetParams = Params{
	Name:                     "simnet",
	Net:                      Simnet,
	GenesisBlock:             &genesisBlock,
	GenesisHash:              genesisHash,
	BaseSubsidy:              defaultBaseSubsidy,
	SubsidyReductionInterval: 4, // EpochLength - 1, so rewards differ within an epoch
	Finalization: FinalizationParams{
		EpochLength:            5,
		MinDepositSize:         1_000 * sompiPerCoin,
		DynastyActivationDelay: DefaultDynastyActivationDelay,
		FinalizerRewardRatio:   defaultFinalizerRewardRatio,
	},
	AllowParamsOverride: true,
}

var (
	// ErrDuplicateNet describes an error where the parameters for a
	// network could not be set due to the network already being a standard
	// network or previously-registered into this package.
	ErrDuplicateNet = errors.New("duplicate network")

	// ErrUnknownNet describes an error where the requested network isn't
	// registered.
	ErrUnknownNet = errors.New("unknown network")
)

var registeredNets = make(map[NetworkID]*Params)

// Register registers the network parameters for a network. This may
// error with ErrDuplicateNet if the network is already registered (either
// due to a previous Register call, or the network being one of the default
// networks).
func Register(params *Params) error {
	if _, ok := registeredNets[params.Net]; ok {
		return errors.WithStack(ErrDuplicateNet)
	}
	registeredNets[params.Net] = params
	return nil
}

// ParamsByName returns the registered network parameters with the given name.
func ParamsByName(name string) (*Params, error) {
	for _, params := range registeredNets {
		if params.Name == name {
			return params, nil
		}
	}
	return nil, errors.Wrapf(ErrUnknownNet, "network %s", name)
}

// Validate checks that the finalization parameters are usable.
func (p *Params) Validate() error {
	if p.Finalization.EpochLength == 0 {
		return errors.Errorf("%s: epoch length must be positive", p.Name)
	}
	if p.Finalization.MinDepositSize == 0 {
		return errors.Errorf("%s: minimum deposit size must be positive", p.Name)
	}
	if p.Finalization.FinalizerRewardRatio > ufp64.Unit {
		return errors.Errorf("%s: finalizer reward ratio %s is above 1",
			p.Name, p.Finalization.FinalizerRewardRatio)
	}
	if p.SubsidyReductionInterval == 0 {
		return errors.Errorf("%s: subsidy reduction interval must be positive", p.Name)
	}
	return nil
}

// mustRegister performs the same function as Register except it panics if there
// is an error. This should only be called from package init functions.
func mustRegister(params *Params) {
	if err := Register(params); err != nil {
		panic("failed to register network: " + err.Error())
	}
}

func init() {
	// Register all default networks when the package is initialized.
	mustRegister(&MainnetParams)
	mustRegister(&TestnetParams)
	mustRegister(&RegressionNetParams)
	mustRegister(&SimnetParams)
}
