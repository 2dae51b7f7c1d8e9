package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func testPrivateKey() string {
	return solana.NewWallet().PrivateKey.String()
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, "private_key: "+testPrivateKey()+"\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultRPCURL, cfg.RPCURL)
	assert.Equal(t, DefaultRouterURL, cfg.RouterURL)
	assert.Equal(t, DefaultSlippage, cfg.Slippage)
	assert.Equal(t, DefaultRetries, cfg.Retries)
	assert.Equal(t, DefaultLogFile, cfg.LogFile)
	assert.False(t, cfg.DebugLogging)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
private_key: `+testPrivateKey()+`
rpc_url: https://rpc.example.com
router_url: https://router.example.com
slippage: 0.01
retries: 5
compute_unit_limit: 400000
compute_unit_price: 1000
debug_logging: true
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://rpc.example.com", cfg.RPCURL)
	assert.Equal(t, "https://router.example.com", cfg.RouterURL)
	assert.Equal(t, 0.01, cfg.Slippage)
	assert.Equal(t, 5, cfg.Retries)
	assert.Equal(t, uint32(400000), cfg.ComputeUnitLimit)
	assert.Equal(t, uint64(1000), cfg.ComputeUnitPrice)
	assert.True(t, cfg.DebugLogging)
}

func TestLoadConfigMissingPrivateKey(t *testing.T) {
	path := writeConfig(t, "slippage: 0.01\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "private_key")
}

func TestLoadConfigRejectsBadSlippage(t *testing.T) {
	for _, slippage := range []string{"0", "1", "1.5", "-0.1"} {
		path := writeConfig(t, "private_key: "+testPrivateKey()+"\nslippage: "+slippage+"\n")
		_, err := LoadConfig(path)
		assert.Error(t, err, "slippage %s must be rejected", slippage)
	}
}

func TestLoadConfigRejectsBadURL(t *testing.T) {
	path := writeConfig(t, "private_key: "+testPrivateKey()+"\nrpc_url: ftp://rpc.example.com\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RPC URL")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
