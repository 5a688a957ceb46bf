package signaling

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
)

// Stage is what a signaling payload looks like. It is used for logs only;
// payloads are always forwarded untouched.
type Stage string

const (
	StageNone      Stage = "none"
	StageOffer     Stage = "offer"
	StageAnswer    Stage = "answer"
	StageCandidate Stage = "candidate"
	StageUnknown   Stage = "unknown"
)

func ClassifySignal(raw json.RawMessage) Stage {
	if len(raw) == 0 || string(raw) == "null" {
		return StageNone
	}

	var desc webrtc.SessionDescription
	if err := json.Unmarshal(raw, &desc); err == nil {
		switch desc.Type {
		case webrtc.SDPTypeOffer:
			return StageOffer
		case webrtc.SDPTypeAnswer, webrtc.SDPTypePranswer:
			return StageAnswer
		}
	}

	// simple-peer wraps the candidate: {"type":"candidate","candidate":{...}}
	var wrapped struct {
		Candidate *webrtc.ICECandidateInit `json:"candidate"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Candidate != nil && wrapped.Candidate.Candidate != "" {
		return StageCandidate
	}

	var cand webrtc.ICECandidateInit
	if err := json.Unmarshal(raw, &cand); err == nil && cand.Candidate != "" {
		return StageCandidate
	}
	return StageUnknown
}
