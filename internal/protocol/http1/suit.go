package http1

import (
	"github.com/indigo-web/dockersock/config"
	"github.com/indigo-web/dockersock/http/method"
	"github.com/indigo-web/dockersock/transport"
)

// Suit couples the serializer and the parser over the same client, so a whole round
// trip is made in a single call.
type Suit struct {
	*Parser
	*Serializer
}

func New(cfg *config.Config, client transport.Client) *Suit {
	return &Suit{
		Parser:     NewParser(cfg, client),
		Serializer: NewSerializer(cfg, client),
	}
}

// RoundTrip writes the request and reads the response to it.
func (s *Suit) RoundTrip(m method.Method, apiVersion, path string, body []byte) (Response, error) {
	if err := s.Write(m, apiVersion, path, body); err != nil {
		return Response{}, err
	}

	return s.Parse(m)
}
