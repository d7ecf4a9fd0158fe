package cmd

import (
	"bytes"
	"testing"

	"github.com/Mohsinsiddi/w3lessons/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootRegistersEveryLesson(t *testing.T) {
	want := []string{"provider", "send-tx", "read-contract", "write-contract", "events"}
	for _, name := range want {
		c, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}
}

func TestProviderMissingEnv(t *testing.T) {
	t.Setenv(config.KeyRPCURL, "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"provider"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingEnv)
	assert.Contains(t, err.Error(), "RPC_URL")
}

func TestSendTxRejectsBadKey(t *testing.T) {
	t.Setenv(config.KeyRPCURL, "http://127.0.0.1:1")
	t.Setenv(config.KeyPrivateKey, "0xnothex")
	t.Setenv(config.KeyReceiver, "0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"send-tx"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid private key")
}
