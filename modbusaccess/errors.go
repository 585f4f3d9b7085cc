package modbusaccess

import "errors"

var (
	// ErrConfiguration marks invalid static configuration: bad counts, scales, layouts or model/version combinations.
	ErrConfiguration = errors.New("configuration error")

	// ErrTransport marks a failed read or write on the Modbus connection.
	ErrTransport = errors.New("transport error")

	// ErrParse marks register data that could not be turned into values, e.g. a short read.
	ErrParse = errors.New("parse error")

	// ErrUsage marks a call that is not valid in the current state, e.g. writing an input register.
	ErrUsage = errors.New("usage error")
)
