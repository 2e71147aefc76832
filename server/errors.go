package server

import "errors"

// ErrEngineRequired is returned when a server is created without an engine.
var ErrEngineRequired = errors.New("engine required")
