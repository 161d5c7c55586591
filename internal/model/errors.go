package model

import "errors"

// Common errors used across the application
var (
	// Account errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidUsername    = errors.New("invalid username")

	// Registry errors
	ErrAlreadyConnected = errors.New("player is already connected")
	ErrRegistryFull     = errors.New("connection registry is full")
	ErrPlayerOffline    = errors.New("player is not online")

	// Session errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrNotYourTurn      = errors.New("not this player's turn")
	ErrAlreadyInSession = errors.New("player is already in a session")
	ErrNoSessionSlots   = errors.New("no free session slots")

	// Rule violations
	ErrNotInDictionary = errors.New("word is not in the dictionary")
	ErrWordAlreadyUsed = errors.New("word was already used this session")
	ErrChainMismatch   = errors.New("word does not chain with the previous word")
	ErrBadTokenCount   = errors.New("word has the wrong number of tokens")

	// Challenge errors
	ErrChallengeNotFound = errors.New("no pending challenge for this pair")
	ErrChallengePending  = errors.New("a challenge is already pending for this pair")
	ErrChallengeSelf     = errors.New("cannot challenge yourself")

	// Dictionary errors
	ErrDictionaryNotLoaded = errors.New("dictionary not loaded")
	ErrDictionaryEmpty     = errors.New("dictionary is empty")
)
