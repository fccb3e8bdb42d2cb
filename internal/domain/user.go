package domain

type User struct {
	ID               string   `json:"id"`
	Username         string   `json:"username"`
	Name             string   `json:"name"`
	Avatar           *string  `json:"avatar,omitempty"`
	DefaultFilterIDs []string `json:"default_filter_ids"`
	AddedFilterIDs   []string `json:"added_filter_ids"`
}

func (u *User) HasAddedFilter(filterID string) bool {
	for _, id := range u.AddedFilterIDs {
		if id == filterID {
			return true
		}
	}
	return false
}
