package domain

// Signaling frame types the relay routes. Everything else is dropped.
const (
	TypeReady        = "ready"
	TypeOffer        = "offer"
	TypeAnswer       = "answer"
	TypeIceCandidate = "ice-candidate"
)

// EventSignal names relayed frames on the fabric. The frame body is
// forwarded verbatim; the relay never rewrites peer payloads.
const EventSignal = "signal"

// Frame is the routing header of a signaling message. The relay inspects
// only these fields and forwards the raw frame untouched.
type Frame struct {
	Type string `json:"type"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Known reports whether the frame type is one the relay routes.
func (f Frame) Known() bool {
	switch f.Type {
	case TypeReady, TypeOffer, TypeAnswer, TypeIceCandidate:
		return true
	}
	return false
}

// RoomGroup is the fabric group every participant of a signaling room joins.
func RoomGroup(roomID string) string { return "room." + roomID }

// PeerGroup is the per-client mailbox inside a room, used for directed
// offer/answer/candidate delivery.
func PeerGroup(roomID, clientID string) string {
	return RoomGroup(roomID) + ".peer." + clientID
}
