package content

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// fieldSeparator keeps ("ab", "c") and ("a", "bc") from hashing alike.
const fieldSeparator = 0x1f

// Normalize canonicalizes text for comparison only: surrounding whitespace is
// trimmed, internal whitespace runs collapse to one space and letters are
// lowercased. Stored entities keep their original text.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Hash returns the hex SHA-256 digest of the normalized fields, in order.
func Hash(fields ...string) string {
	h := sha256.New()
	for i, f := range fields {
		if i > 0 {
			h.Write([]byte{fieldSeparator})
		}
		h.Write([]byte(Normalize(f)))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HashTestQuestion fingerprints a question by its stem and option texts.
// Rationale, difficulty and the answer label are not part of the identity.
func HashTestQuestion(stem string, options []string) string {
	fields := make([]string, 0, len(options)+1)
	fields = append(fields, stem)
	fields = append(fields, options...)
	return Hash(fields...)
}

// HashFlashcard fingerprints a flashcard by front and back.
func HashFlashcard(front, back string) string {
	return Hash(front, back)
}
