package kafka

import (
	"testing"

	"github.com/Shopify/sarama"
	"github.com/flexprice/feeledger/internal/config"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducerConfig(t *testing.T) {
	base := config.GetDefaultConfig().Kafka

	t.Run("plain_connection", func(t *testing.T) {
		sc, err := NewProducerConfig(base)
		require.NoError(t, err)
		assert.True(t, sc.Producer.Idempotent)
		assert.Equal(t, sarama.WaitForAll, sc.Producer.RequiredAcks)
		assert.Equal(t, 1, sc.Net.MaxOpenRequests)
		assert.False(t, sc.Net.SASL.Enable)
		assert.False(t, sc.Net.TLS.Enable)
		assert.NoError(t, sc.Validate())
	})

	t.Run("scram_sha512", func(t *testing.T) {
		cfg := base
		cfg.UseSASL = true
		cfg.SASLMechanism = "scram-sha-512"
		cfg.SASLUser = "feeledger"
		cfg.SASLPassword = "secret"

		sc, err := NewProducerConfig(cfg)
		require.NoError(t, err)
		assert.True(t, sc.Net.SASL.Enable)
		assert.True(t, sc.Net.TLS.Enable)
		assert.Equal(t, sarama.SASLMechanism(sarama.SASLTypeSCRAMSHA512), sc.Net.SASL.Mechanism)
		require.NotNil(t, sc.Net.SASL.SCRAMClientGeneratorFunc)

		client := sc.Net.SASL.SCRAMClientGeneratorFunc()
		require.NoError(t, client.Begin("feeledger", "secret", ""))
		first, err := client.Step("")
		require.NoError(t, err)
		assert.Contains(t, first, "n=feeledger")
	})

	t.Run("plain_sasl", func(t *testing.T) {
		cfg := base
		cfg.UseSASL = true
		cfg.SASLMechanism = "PLAIN"

		sc, err := NewProducerConfig(cfg)
		require.NoError(t, err)
		assert.Nil(t, sc.Net.SASL.SCRAMClientGeneratorFunc)
	})

	t.Run("unsupported_mechanism", func(t *testing.T) {
		cfg := base
		cfg.UseSASL = true
		cfg.SASLMechanism = "GSSAPI"

		_, err := NewProducerConfig(cfg)
		require.Error(t, err)
		assert.True(t, ierr.IsValidation(err))
	})
}
