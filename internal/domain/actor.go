package domain

// Actor is the member behind an interaction.
type Actor struct {
	ID             string
	Username       string
	RoleIDs        []string
	CanManageGuild bool
}

// HasRole reports whether the actor holds roleID.
func (a Actor) HasRole(roleID string) bool {
	if roleID == "" {
		return false
	}
	for _, r := range a.RoleIDs {
		if r == roleID {
			return true
		}
	}
	return false
}
