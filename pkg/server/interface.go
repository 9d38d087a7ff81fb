/*
Package server implements msgpack IPC for term suggestions.

Clients write msgpack maps to stdin and read one msgpack map per request from stdout. Every
message carries an id that is echoed back. On start the server writes {"status": "ready"}.

A suggestion request names the query, and optionally a limit and the scan mode:

	{"id": "req_001", "q": "quik brwn", "l": 5, "o": true}

The response lists terms by rank, 1 being the most frequent, with their summed document
frequency and the time taken in microseconds:

	{"id": "req_001", "s": [{"w": "brown", "r": 1, "f": 9}, {"w": "quick", "r": 2, "f": 5}], "c": 2, "t": 412}

Failed requests get an error with an HTTP style code:

	{"id": "req_001", "e": "invalid argument: empty query", "c": 400}

Requests carrying an action are control messages:

	{"id": "h1", "action": "health"}
	{"id": "d1", "action": "get_info"}
	{"id": "d2", "action": "get_options"}
	{"id": "d3", "action": "set_size", "chunk_count": 3}

The dictionary actions need a chunk backed spell dictionary and fail otherwise.
*/
package server

import "github.com/bastiangx/termserve/pkg/dictionary"

// Request is any client message. Action selects a control message; without it the message
// asks for suggestions.
type Request struct {
	ID         string `msgpack:"id"`
	Query      string `msgpack:"q,omitempty"`
	Limit      int    `msgpack:"l,omitempty"`
	Optimize   *bool  `msgpack:"o,omitempty"`
	Action     string `msgpack:"action,omitempty"`
	ChunkCount *int   `msgpack:"chunk_count,omitempty"`
}

// Suggestion is one ranked term.
type Suggestion struct {
	Word      string `msgpack:"w"`
	Rank      uint16 `msgpack:"r"`
	Frequency int    `msgpack:"f"`
}

// SuggestResponse answers a suggestion request.
type SuggestResponse struct {
	ID          string       `msgpack:"id"`
	Suggestions []Suggestion `msgpack:"s"`
	Count       int          `msgpack:"c"`
	TimeTaken   int64        `msgpack:"t"`
}

// ErrorResponse reports a failed request.
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

// StatusResponse answers health and dictionary actions.
type StatusResponse struct {
	ID              string                  `msgpack:"id"`
	Status          string                  `msgpack:"status"`
	Indexes         []string                `msgpack:"indexes,omitempty"`
	Requests        int                     `msgpack:"requests,omitempty"`
	Words           int                     `msgpack:"words,omitempty"`
	CurrentChunks   int                     `msgpack:"current_chunks,omitempty"`
	AvailableChunks int                     `msgpack:"available_chunks,omitempty"`
	Options         []dictionary.SizeOption `msgpack:"options,omitempty"`
}

// Error codes.
const (
	CodeBadRequest  = 400
	CodeNotFound    = 404
	CodeInternal    = 500
	CodeUnavailable = 503
)
