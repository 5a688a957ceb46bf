package domain

type (
	// ConnID is assigned by the transport when a socket connects.
	ConnID string
	// RoomID names a code room or a voice room. The two live in separate tables.
	RoomID string
)

// ProblemInfo is the problem snapshot a client attaches to its room.
// The server only relays it.
type ProblemInfo struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Difficulty string `json:"difficulty"`
	ProblemID  string `json:"problemId"`
}
