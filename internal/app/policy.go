package app

import (
	"github.com/dkeye/CodeRoom/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

// Policy decides what happens to a connection whose outbound queue is full.
type Policy interface {
	OnBackPressure(id domain.ConnID) BackpressureAction
}

// DropPolicy keeps delivery fire-and-forget: the frame is lost, the connection stays.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(domain.ConnID) BackpressureAction {
	return DropFrame
}

type KickPolicy struct{}

func (KickPolicy) OnBackPressure(domain.ConnID) BackpressureAction {
	return KickMember
}

// PolicyByName maps the config value to a Policy; unknown names fall back to drop.
func PolicyByName(name string) Policy {
	switch name {
	case "kick":
		return KickPolicy{}
	default:
		return DropPolicy{}
	}
}
