package domain

type Chat struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	UserIDs          []string `json:"user_ids"`
	DefaultFilterIDs []string `json:"default_filter_ids"`
}

func (c *Chat) HasMember(userID string) bool {
	for _, id := range c.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
