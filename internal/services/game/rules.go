package game

import (
	"strings"
	"time"
)

// ChainMode selects how consecutive words must link.
type ChainMode string

const (
	// ChainByCharacter links on the previous word's final character.
	ChainByCharacter ChainMode = "character"
	// ChainByToken links on the previous word's final space-separated
	// token, the phrase-chain variant.
	ChainByToken ChainMode = "token"
)

// Rules holds the configurable match rules. One Rules value applies to
// every session on a server.
type Rules struct {
	TurnTimeLimit      time.Duration
	MaxAttemptsPerTurn int
	ScorePerWord       int
	WinnerScoreDelta   int
	ChainMode          ChainMode
	// RequiredTokens, when positive, rejects guesses whose token count
	// differs. Zero disables the check.
	RequiredTokens int
	// MaxLoggedMoves caps a session's in-memory move log. Further moves
	// still play; they are just not recorded.
	MaxLoggedMoves int
}

// DefaultRules returns the baseline ruleset.
func DefaultRules() Rules {
	return Rules{
		TurnTimeLimit:      30 * time.Second,
		MaxAttemptsPerTurn: 3,
		ScorePerWord:       1,
		WinnerScoreDelta:   1,
		ChainMode:          ChainByCharacter,
		RequiredTokens:     0,
		MaxLoggedMoves:     24,
	}
}

// leadUnit returns the chaining unit at the start of a word.
func leadUnit(mode ChainMode, word string) string {
	word = strings.TrimSpace(word)
	if word == "" {
		return ""
	}
	if mode == ChainByToken {
		if i := strings.IndexByte(word, ' '); i >= 0 {
			return word[:i]
		}
		return word
	}
	return string([]rune(word)[0])
}

// trailUnit returns the chaining unit at the end of a word.
func trailUnit(mode ChainMode, word string) string {
	word = strings.TrimSpace(word)
	if word == "" {
		return ""
	}
	if mode == ChainByToken {
		if i := strings.LastIndexByte(word, ' '); i >= 0 {
			return word[i+1:]
		}
		return word
	}
	runes := []rune(word)
	return string(runes[len(runes)-1])
}

// chains reports whether next links onto prev under the given mode.
func chains(mode ChainMode, prev, next string) bool {
	return strings.EqualFold(trailUnit(mode, prev), leadUnit(mode, next))
}

// tokenCount counts space-separated tokens.
func tokenCount(word string) int {
	return len(strings.Fields(word))
}
