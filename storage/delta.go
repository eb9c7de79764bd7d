package storage

import "github.com/creativeprojects/anthill/mailbox"

// ComputeDelta returns the remote messages whose uid is not in the local store.
// The order of the remote list is kept.
func ComputeDelta(remote []mailbox.Message, local mailbox.UIDSet) []mailbox.Message {
	delta := make([]mailbox.Message, 0)
	for _, msg := range remote {
		if local.Contains(msg.Uid) {
			continue
		}
		delta = append(delta, msg)
	}
	return delta
}
