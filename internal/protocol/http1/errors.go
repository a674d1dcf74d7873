package http1

import (
	"github.com/indigo-web/dockersock/errors"
)

func ioError(err error) error {
	return errors.New(errors.IO, "read", err)
}

func protocolError(err error) error {
	return errors.New(errors.Protocol, "parse", err)
}
