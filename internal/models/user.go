package models

// Actor is the staff member or top-level account performing an action.
// PermissionNames is already flattened from roles/groups by the caller.
type Actor struct {
	UserID          uint
	BranchID        uint
	IsTopAccount    bool
	PermissionNames map[string]struct{}
}

// NewActor builds an actor from a flat list of permission names
func NewActor(userID uint, topAccount bool, names ...string) *Actor {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return &Actor{
		UserID:          userID,
		IsTopAccount:    topAccount,
		PermissionNames: set,
	}
}

// Has reports plain set membership, without the top-account bypass
func (a *Actor) Has(name string) bool {
	if a == nil || a.PermissionNames == nil {
		return false
	}
	_, ok := a.PermissionNames[name]
	return ok
}
