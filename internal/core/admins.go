package core

// Admins is an immutable snapshot of the bot owner and extra admins, built
// once before dispatch starts.
type Admins struct {
	owner string
	ids   map[string]struct{}
}

// NewAdmins builds the snapshot. The owner is always an admin; blank ids are
// skipped.
func NewAdmins(owner string, ids ...string) Admins {
	set := make(map[string]struct{}, len(ids)+1)
	if owner != "" {
		set[owner] = struct{}{}
	}
	for _, id := range ids {
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return Admins{owner: owner, ids: set}
}

func (a Admins) Contains(userID string) bool {
	_, ok := a.ids[userID]
	return ok
}

func (a Admins) IsOwner(userID string) bool {
	return a.owner != "" && userID == a.owner
}

func (a Admins) Owner() string { return a.owner }

func (a Admins) Len() int { return len(a.ids) }
