// Package ablychat is the public surface of the chat room client: a
// Client factory/room registry, Room objects exposing the
// messages/presence/typing/reactions/occupancy feature APIs, and the
// room lifecycle status/discontinuity streams those features and
// callers observe. The hard part — serialising ATTACH/DETACH/RELEASE
// and deriving room status from the underlying channel — lives in
// internal/lifecycle and is exposed here through thin wrappers.
package ablychat

import "github.com/ably/ably-chat-go/internal/lifecycle"

// RoomStatus is the canonical, user-visible status of a room.
type RoomStatus = lifecycle.RoomLifecycle

const (
	RoomStatusInitialized = lifecycle.RoomStatusInitialized
	RoomStatusAttaching   = lifecycle.RoomStatusAttaching
	RoomStatusAttached    = lifecycle.RoomStatusAttached
	RoomStatusDetaching   = lifecycle.RoomStatusDetaching
	RoomStatusDetached    = lifecycle.RoomStatusDetached
	RoomStatusSuspended   = lifecycle.RoomStatusSuspended
	RoomStatusFailed      = lifecycle.RoomStatusFailed
	RoomStatusReleasing   = lifecycle.RoomStatusReleasing
	RoomStatusReleased    = lifecycle.RoomStatusReleased
)

// RoomStatusChange is delivered to OnStatusChange subscribers.
type RoomStatusChange = lifecycle.RoomStatusChange

// BufferingPolicy controls how many events a status/discontinuity
// subscriber's channel can buffer before new events are dropped for it.
type BufferingPolicy = lifecycle.BufferingPolicy

// DefaultBufferingPolicy is used by subscribers that don't pick one.
var DefaultBufferingPolicy = lifecycle.DefaultBufferingPolicy

// FeatureTag identifies a feature for presence-gate error messages, so
// the lifecycle manager can report "to perform this <feature>
// operation..." without knowing about feature packages itself.
type FeatureTag string

const (
	FeatureMessages  FeatureTag = "messages"
	FeaturePresence  FeatureTag = "presence"
	FeatureTyping    FeatureTag = "typing"
	FeatureReactions FeatureTag = "reactions"
	FeatureOccupancy FeatureTag = "occupancy"
)
