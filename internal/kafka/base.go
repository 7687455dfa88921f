package kafka

import (
	"crypto/tls"
	"strings"
	"time"

	"github.com/Shopify/sarama"
	"github.com/flexprice/feeledger/internal/config"
	ierr "github.com/flexprice/feeledger/internal/errors"
)

// NewProducerConfig builds the sarama config for the invoice event producer.
// Every event is acknowledged by all in-sync replicas and the producer is
// idempotent, so a retried send never duplicates an invoice event.
func NewProducerConfig(cfg config.KafkaConfig) (*sarama.Config, error) {
	sc := sarama.NewConfig()
	sc.Version = sarama.V2_1_0_0
	sc.ClientID = cfg.ClientID

	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Idempotent = true
	sc.Producer.Retry.Max = 5
	sc.Producer.Retry.Backoff = 250 * time.Millisecond
	sc.Net.MaxOpenRequests = 1
	sc.Metadata.Retry.Max = 3

	if cfg.TLS {
		sc.Net.TLS.Enable = true
		sc.Net.TLS.Config = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	if !cfg.UseSASL {
		return sc, nil
	}

	mechanism := sarama.SASLMechanism(strings.ToUpper(cfg.SASLMechanism))
	switch mechanism {
	case sarama.SASLTypePlaintext:
	case sarama.SASLTypeSCRAMSHA256, sarama.SASLTypeSCRAMSHA512:
		sc.Net.SASL.SCRAMClientGeneratorFunc = scramClientGenerator(mechanism)
	default:
		return nil, ierr.NewErrorf("unsupported kafka sasl mechanism %q", cfg.SASLMechanism).
			WithHintf("kafka.sasl_mechanism must be one of %s, %s, %s",
				sarama.SASLTypePlaintext, sarama.SASLTypeSCRAMSHA256, sarama.SASLTypeSCRAMSHA512).
			Mark(ierr.ErrValidation)
	}

	// SASL credentials are never sent in clear text
	sc.Net.TLS.Enable = true
	sc.Net.SASL.Enable = true
	sc.Net.SASL.Mechanism = mechanism
	sc.Net.SASL.User = cfg.SASLUser
	sc.Net.SASL.Password = cfg.SASLPassword

	return sc, nil
}
