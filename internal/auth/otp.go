package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// OTPDigits is the length of emailed one-time codes.
const OTPDigits = 6

var otpSpace = big.NewInt(1_000_000)

// GenerateOTP returns a zero-padded random code and its bcrypt hash. Only the
// hash is stored.
func GenerateOTP() (code, hash string, err error) {
	n, err := rand.Int(rand.Reader, otpSpace)
	if err != nil {
		return "", "", fmt.Errorf("generate otp: %w", err)
	}
	code = fmt.Sprintf("%0*d", OTPDigits, n.Int64())
	hash, err = HashPassword(code)
	if err != nil {
		return "", "", fmt.Errorf("hash otp: %w", err)
	}
	return code, hash, nil
}

func CheckOTP(hash, code string) bool {
	if len(code) != OTPDigits {
		return false
	}
	return CheckPassword(hash, code)
}
