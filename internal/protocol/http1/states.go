package http1

type parserState uint8

const (
	eStatusLine parserState = iota + 1
	eHeaders
	eBody
	eDone
)
