package store

/**
 * This file contains utility functions to format the keys for the
 * (key, value) pairs of the shared record store. It avoids having to call
 * "fmt.Sprintf(...)" with the same format spec every time, potentially
 * confusing the key format.
 */

import "fmt"

func FormatRoomKey(roomId string) string {
	return fmt.Sprintf("room:%s", roomId)
}

// One invite index record per (recipient, room) pair, so a recipient can
// discover invites without scanning every room.
func FormatUserInviteKey(username, roomId string) string {
	return fmt.Sprintf("invite:%s:%s", username, roomId)
}

// Pattern matching every invite index record of a recipient.
func FormatUserInvitePattern(username string) string {
	return fmt.Sprintf("invite:%s:*", username)
}

func FormatPresenceKey(username string) string {
	return fmt.Sprintf("presence:%s", username)
}

func FormatPointsKey(username string) string {
	return fmt.Sprintf("profile:%s:points", username)
}

// WatchChannel is the pub/sub channel carrying change notifications for key.
// A '*' inside key makes it a pattern channel (PSUBSCRIBE).
func WatchChannel(key string) string {
	return fmt.Sprintf("watch:%s", key)
}
