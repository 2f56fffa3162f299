package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dynastynet/finalityd/domain/dagconfig"
)

func prepareConfigDir(t *testing.T, testName string, configFileContent string) (args []string, dir string, teardown func()) {
	dir, err := ioutil.TempDir("", testName)
	if err != nil {
		t.Fatalf("%s: TempDir unexpectedly failed: %s", testName, err)
	}
	configFile := filepath.Join(dir, "test.conf")
	if configFileContent != "" {
		err = ioutil.WriteFile(configFile, []byte(configFileContent), 0600)
		if err != nil {
			t.Fatalf("%s: WriteFile unexpectedly failed: %s", testName, err)
		}
	}
	args = []string{"--configfile", configFile, "--datadir", filepath.Join(dir, "data"), "--logdir", filepath.Join(dir, "logs")}
	return args, dir, func() { os.RemoveAll(dir) }
}

func TestParseConfigDefaults(t *testing.T) {
	args, dir, teardown := prepareConfigDir(t, "TestParseConfigDefaults", "")
	defer teardown()

	cfg, err := ParseConfig(append(args, "--simnet"), nil)
	if err != nil {
		t.Fatalf("ParseConfig: %+v", err)
	}
	if cfg.NetParams() != &dagconfig.SimnetParams {
		t.Fatalf("expected simnet params, got %s", cfg.NetParams().Name)
	}
	if expected := filepath.Join(dir, "data", "simnet"); cfg.DataDir != expected {
		t.Errorf("unexpected data dir %s, want %s", cfg.DataDir, expected)
	}
	if expected := filepath.Join(dir, "logs", "simnet"); cfg.LogDir != expected {
		t.Errorf("unexpected log dir %s, want %s", cfg.LogDir, expected)
	}
	if cfg.PruneInterval != defaultPruneInterval || cfg.StateCacheSize != defaultStateCacheSize {
		t.Errorf("unexpected defaults: prune interval %s, state cache size %d", cfg.PruneInterval, cfg.StateCacheSize)
	}
}

func TestResolveNetwork(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		expectedParams *dagconfig.Params
		expectedErr    bool
	}{
		{name: "mainnet by default", args: nil, expectedParams: &dagconfig.MainnetParams},
		{name: "testnet", args: []string{"--testnet"}, expectedParams: &dagconfig.TestnetParams},
		{name: "regtest", args: []string{"--regtest"}, expectedParams: &dagconfig.RegressionNetParams},
		{name: "two networks", args: []string{"--testnet", "--simnet"}, expectedErr: true},
	}
	for _, test := range tests {
		args, _, teardown := prepareConfigDir(t, "TestResolveNetwork", "")
		cfg, err := ParseConfig(append(args, test.args...), nil)
		teardown()
		if test.expectedErr {
			if err == nil {
				t.Errorf("%s: expected an error", test.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: ParseConfig: %+v", test.name, err)
			continue
		}
		if cfg.NetParams() != test.expectedParams {
			t.Errorf("%s: expected %s params, got %s", test.name, test.expectedParams.Name, cfg.NetParams().Name)
		}
	}
}

func TestFinalizationParamsOverride(t *testing.T) {
	args, _, teardown := prepareConfigDir(t, "TestFinalizationParamsOverride", "")
	defer teardown()

	cfg, err := ParseConfig(append(args, "--simnet", "--epochlength=10", "--mindeposit=500", "--activationdelay=3"), nil)
	if err != nil {
		t.Fatalf("ParseConfig: %+v", err)
	}
	finalization := cfg.NetParams().Finalization
	if finalization.EpochLength != 10 || finalization.MinDepositSize != 500 || finalization.DynastyActivationDelay != 3 {
		t.Fatalf("overrides weren't applied: %+v", finalization)
	}
	if dagconfig.SimnetParams.Finalization.EpochLength != 5 {
		t.Fatalf("overrides changed the registered simnet params")
	}

	_, err = ParseConfig(append(args, "--testnet", "--epochlength=10"), nil)
	if err == nil {
		t.Fatalf("expected overriding testnet params to fail")
	}
}

func TestConfigFile(t *testing.T) {
	args, _, teardown := prepareConfigDir(t, "TestConfigFile",
		"[Application Options]\nsimnet=1\npruneinterval=5s\nstatecachesize=7\n")
	defer teardown()

	cfg, err := ParseConfig(append(args, "--pruneinterval=10s"), nil)
	if err != nil {
		t.Fatalf("ParseConfig: %+v", err)
	}
	if cfg.NetParams() != &dagconfig.SimnetParams {
		t.Errorf("the network of the config file wasn't applied, got %s", cfg.NetParams().Name)
	}
	if cfg.StateCacheSize != 7 {
		t.Errorf("unexpected state cache size %d, want 7", cfg.StateCacheSize)
	}
	if cfg.PruneInterval != 10*time.Second {
		t.Errorf("the command line didn't take precedence: prune interval %s", cfg.PruneInterval)
	}
}

func TestInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "prune interval too short", args: []string{"--simnet", "--pruneinterval=10ms"}},
		{name: "empty state cache", args: []string{"--simnet", "--statecachesize=0"}},
		{name: "unknown option", args: []string{"--simnet", "--nosuchoption"}},
	}
	for _, test := range tests {
		args, _, teardown := prepareConfigDir(t, "TestInvalidOptions", "")
		_, err := ParseConfig(append(args, test.args...), nil)
		teardown()
		if err == nil {
			t.Errorf("%s: expected an error", test.name)
		}
	}
}

type toolOptions struct {
	Rounds int    `long:"rounds" description:"Number of rounds"`
	Label  string `long:"label" description:"Label of the run"`
}

func TestAppOptions(t *testing.T) {
	args, dir, teardown := prepareConfigDir(t, "TestAppOptions",
		"[Tool Options]\nrounds=3\nlabel=fromfile\n")
	defer teardown()

	defaults := DefaultFlags()
	defaults.StateCacheSize = 11
	appOptions := &toolOptions{Rounds: 1}
	cfg, err := ParseConfig(append(args, "--label=fromargs"), &Options{
		Defaults:         defaults,
		AppOptions:       appOptions,
		AppOptionsGroup:  "Tool Options",
		DefaultNetParams: &dagconfig.SimnetParams,
	})
	if err != nil {
		t.Fatalf("ParseConfig: %+v", err)
	}
	if cfg.NetParams() != &dagconfig.SimnetParams {
		t.Errorf("expected the default network simnet, got %s", cfg.NetParams().Name)
	}
	if cfg.StateCacheSize != 11 {
		t.Errorf("the defaults weren't applied: state cache size %d", cfg.StateCacheSize)
	}
	if appOptions.Rounds != 3 || appOptions.Label != "fromargs" {
		t.Errorf("unexpected tool options %+v", appOptions)
	}
	if expected := filepath.Join(dir, "data", "simnet"); cfg.DataDir != expected {
		t.Errorf("unexpected data dir %s, want %s", cfg.DataDir, expected)
	}

	cfg, err = ParseConfig(append(args, "--regtest"), &Options{DefaultNetParams: &dagconfig.SimnetParams})
	if err != nil {
		t.Fatalf("ParseConfig: %+v", err)
	}
	if cfg.NetParams() != &dagconfig.RegressionNetParams {
		t.Errorf("a selected network must override the default, got %s", cfg.NetParams().Name)
	}
}
