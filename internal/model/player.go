package model

// MaxUsernameLen is the longest accepted username, matching the wire
// protocol's fixed-width name fields.
const MaxUsernameLen = 49

// User is a persisted player account.
//
// Password is stored and compared as cleartext; the protocol predates any
// hashing scheme and clients depend on the existing contract.
type User struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Score    int    `json:"score"`
	IsOnline bool   `json:"is_online"`
}

// ValidUsername reports whether a name is acceptable for signup. Pipe is
// the payload field separator and can never appear in a name.
func ValidUsername(name string) bool {
	if name == "" || len(name) > MaxUsernameLen {
		return false
	}
	for _, r := range name {
		if r == '|' || r == ',' || r == ';' || r < 0x20 || r > 0x7e {
			return false
		}
	}
	return true
}
