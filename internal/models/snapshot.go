package models

// Snapshot is the full content of the friend-owned collections.
// It is the unit of export and restore.
type Snapshot struct {
	Friends      []Friend
	Interactions []Interaction
	Memos        []Memo
}

// InteractionsByFriend indexes interactions by owning friend id.
func (s *Snapshot) InteractionsByFriend() map[int64][]Interaction {
	out := make(map[int64][]Interaction, len(s.Friends))
	for _, i := range s.Interactions {
		out[i.FriendID] = append(out[i.FriendID], i)
	}
	return out
}
