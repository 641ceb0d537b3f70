package utils

import "golang.org/x/crypto/bcrypt"

// HashCardNumber returns a bcrypt fingerprint of a card number so payments can
// be matched later without storing the number itself.
func HashCardNumber(number string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(number), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyCardNumber compares a stored fingerprint with a card number.
func VerifyCardNumber(hash, number string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(number)) == nil
}
