package pipeline

import "finvoice/internal/service"

// State is the per-request record threaded through the pipeline stages.
// Created at request start, mutated by each stage in sequence, discarded
// once the reply is returned.
type State struct {
	OwnerID    string
	AudioPath  string
	Transcript string
	Route      service.Route
	Reply      string
	Terminate  bool
}
