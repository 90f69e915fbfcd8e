package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	letterBytes  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	numberBytes  = "0123456789"
	alphanumeric = letterBytes + numberBytes
)

func GenerateRandomString(length int) string {
	return generateRandom(length, alphanumeric)
}

func GenerateRandomNumericString(length int) string {
	return generateRandom(length, numberBytes)
}

func generateRandom(length int, charset string) string {
	result := make([]byte, length)
	charsetLength := big.NewInt(int64(len(charset)))

	for i := range result {
		num, _ := rand.Int(rand.Reader, charsetLength)
		result[i] = charset[num.Int64()]
	}

	return string(result)
}

func SecureRandomInt(max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64())
}

// GenerateTicketNumber builds a globally unique, human-meaningful ticket
// number: R<raffleId>U<userId>T<timestamp><random>.
func GenerateTicketNumber(raffleID, userID primitive.ObjectID, issuedAt time.Time) string {
	return fmt.Sprintf("R%sU%sT%d%s",
		raffleID.Hex(),
		userID.Hex(),
		issuedAt.UnixNano(),
		GenerateRandomNumericString(TicketRandomSuffixLength),
	)
}

// GenerateVerificationCode returns an uppercase code with look-alike
// characters (0, O, I, L) replaced.
func GenerateVerificationCode() string {
	code := strings.ToUpper(GenerateRandomString(VerificationCodeLength))

	code = strings.ReplaceAll(code, "0", "2")
	code = strings.ReplaceAll(code, "O", "3")
	code = strings.ReplaceAll(code, "I", "4")
	code = strings.ReplaceAll(code, "L", "5")

	return code
}
