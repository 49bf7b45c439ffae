package models

// Contact is a client, agent, or other party in the address book
type Contact struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Role    string `json:"role,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Source  string `json:"source,omitempty"`
	Status  string `json:"status,omitempty"`
	Group   string `json:"group,omitempty"`
	Address string `json:"address,omitempty"`
}

func (c Contact) RecordKey() string { return c.Key }

func (c Contact) WithKey(key string) Contact {
	c.Key = key
	return c
}
