package redis

import (
	"fmt"

	"github.com/hmngo/wordchain/internal/model"
)

// Key prefix for all game-related data
const keyPrefix = "wordchain"

// userKey returns the Redis key for a User
func userKey(username string) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, username)
}

// usersIndexKey returns the Redis key for the SET of all usernames
func usersIndexKey() string {
	return fmt.Sprintf("%s:idx:users", keyPrefix)
}

// onlineIndexKey returns the Redis key for the SET of online usernames
func onlineIndexKey() string {
	return fmt.Sprintf("%s:idx:online", keyPrefix)
}

// historyKey returns the Redis key for a GameHistoryRecord
func historyKey(id model.SessionID) string {
	return fmt.Sprintf("%s:history:%s", keyPrefix, id)
}

// historyForPlayerKey returns the Redis key for the LIST of session ids a
// player appears in, in insertion order
func historyForPlayerKey(playerName string) string {
	return fmt.Sprintf("%s:idx:history_for_player:%s", keyPrefix, playerName)
}

// dictionaryKey returns the Redis key for the dictionary word list
func dictionaryKey() string {
	return fmt.Sprintf("%s:dictionary", keyPrefix)
}
