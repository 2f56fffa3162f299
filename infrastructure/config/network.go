package config

import (
	"fmt"
	"os"

	"github.com/dynastynet/finalityd/domain/dagconfig"
	"github.com/dynastynet/finalityd/domain/finality/model/externalapi"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

// NetworkFlags holds the network configuration, that is which network is selected.
type NetworkFlags struct {
	Testnet         bool   `long:"testnet" description:"Use the test network"`
	RegressionTest  bool   `long:"regtest" description:"Use the regression test network"`
	Simnet          bool   `long:"simnet" description:"Use the simulation test network"`
	EpochLength     uint32 `long:"epochlength" description:"Override the number of blocks in an epoch (allowed only on regtest and simnet)"`
	MinDepositSize  uint64 `long:"mindeposit" description:"Override the minimum deposit in sompi (allowed only on regtest and simnet)"`
	ActivationDelay uint32 `long:"activationdelay" description:"Override the number of dynasties between a deposit and its first vote (allowed only on regtest and simnet)"`

	ActiveNetParams *dagconfig.Params
}

// ResolveNetwork selects ActiveNetParams from the network flags,
// defaultParams when none is set, and applies the finalization parameter
// overrides. It fails when more than one network is selected.
func (networkFlags *NetworkFlags) ResolveNetwork(parser *flags.Parser, defaultParams *dagconfig.Params) error {
	candidates := []struct {
		selected bool
		params   *dagconfig.Params
	}{
		{networkFlags.Testnet, &dagconfig.TestnetParams},
		{networkFlags.RegressionTest, &dagconfig.RegressionNetParams},
		{networkFlags.Simnet, &dagconfig.SimnetParams},
	}

	networkFlags.ActiveNetParams = defaultParams
	selectedCount := 0
	for _, candidate := range candidates {
		if candidate.selected {
			selectedCount++
			networkFlags.ActiveNetParams = candidate.params
		}
	}
	if selectedCount > 1 {
		err := errors.New("only one of --testnet, --regtest and --simnet may be used")
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return err
	}

	return networkFlags.overrideFinalizationParams()
}

// NetParams returns the ActiveNetParams
func (networkFlags *NetworkFlags) NetParams() *dagconfig.Params {
	return networkFlags.ActiveNetParams
}

func (networkFlags *NetworkFlags) overrideFinalizationParams() error {
	if networkFlags.EpochLength == 0 && networkFlags.MinDepositSize == 0 && networkFlags.ActivationDelay == 0 {
		return nil
	}
	if !networkFlags.ActiveNetParams.AllowParamsOverride {
		return errors.Errorf("finalization parameters may not be overridden on %s",
			networkFlags.ActiveNetParams.Name)
	}

	// The registered params are shared, so the overrides apply to a copy.
	params := *networkFlags.ActiveNetParams
	if networkFlags.EpochLength != 0 {
		params.Finalization.EpochLength = networkFlags.EpochLength
	}
	if networkFlags.MinDepositSize != 0 {
		params.Finalization.MinDepositSize = networkFlags.MinDepositSize
	}
	if networkFlags.ActivationDelay != 0 {
		params.Finalization.DynastyActivationDelay = externalapi.Dynasty(networkFlags.ActivationDelay)
	}
	err := params.Validate()
	if err != nil {
		return err
	}
	networkFlags.ActiveNetParams = &params
	return nil
}
