package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

const defaultHashSalt = "default-salt-change-in-production"

var hashSalt = defaultHashSalt

// InitHashSalt loads LOG_HASH_SALT. Call it after the environment is loaded.
func InitHashSalt() {
	hashSalt = os.Getenv("LOG_HASH_SALT")
	if hashSalt == "" {
		hashSalt = defaultHashSalt
	}
}

// HashUserID creates a privacy-preserving hash of a Telegram user ID.
func HashUserID(userID int64) string {
	return hashID(userID)
}

// HashChatID creates a privacy-preserving hash of a Telegram chat ID.
func HashChatID(chatID int64) string {
	return hashID(chatID)
}

func hashID(id int64) string {
	data := fmt.Sprintf("%d:%s", id, hashSalt)
	hash := sha256.Sum256([]byte(data))
	// First 8 hex characters are enough to correlate log lines.
	return hex.EncodeToString(hash[:])[:8]
}
