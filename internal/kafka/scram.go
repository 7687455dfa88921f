package kafka

import (
	"github.com/Shopify/sarama"
	"github.com/xdg-go/scram"
)

// scramClient adapts xdg-go/scram to sarama.SCRAMClient
type scramClient struct {
	conversation *scram.ClientConversation
	hash         scram.HashGeneratorFcn
}

func scramClientGenerator(mechanism sarama.SASLMechanism) func() sarama.SCRAMClient {
	hash := scram.SHA512
	if mechanism == sarama.SASLTypeSCRAMSHA256 {
		hash = scram.SHA256
	}
	return func() sarama.SCRAMClient {
		return &scramClient{hash: hash}
	}
}

func (s *scramClient) Begin(userName, password, authzID string) error {
	client, err := s.hash.NewClient(userName, password, authzID)
	if err != nil {
		return err
	}
	s.conversation = client.NewConversation()
	return nil
}

func (s *scramClient) Step(challenge string) (string, error) {
	return s.conversation.Step(challenge)
}

func (s *scramClient) Done() bool {
	return s.conversation.Done()
}
