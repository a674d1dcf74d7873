package http1

import (
	"bytes"
	"io"

	"github.com/indigo-web/dockersock/transport"
	"github.com/indigo-web/utils/buffer"
)

// lineReader accumulates the data coming from the client until the line feed. Everything
// after it is pushed back to the client, so no byte beyond the line is ever consumed.
type lineReader struct {
	client transport.Client
	buff   *buffer.Buffer[byte]
	// tooLong is returned when the line doesn't fit into the buffer.
	tooLong error
}

func newLineReader(client transport.Client, buff *buffer.Buffer[byte], tooLong error) lineReader {
	return lineReader{
		client:  client,
		buff:    buff,
		tooLong: tooLong,
	}
}

// Line returns the next line including its terminating LF. The returned slice is valid
// only until the next call.
func (l *lineReader) Line() ([]byte, error) {
	l.buff.Clear()

	for {
		data, err := l.client.Read()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}

			return nil, ioError(err)
		}

		lf := bytes.IndexByte(data, '\n')
		if lf == -1 {
			if !l.buff.Append(data...) {
				return nil, protocolError(l.tooLong)
			}

			continue
		}

		if !l.buff.Append(data[:lf+1]...) {
			return nil, protocolError(l.tooLong)
		}

		l.client.Pushback(data[lf+1:])

		return l.buff.Finish(), nil
	}
}

func trimCRLF(line []byte) []byte {
	if len(line) > 0 && line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
	}

	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}

	return line
}
