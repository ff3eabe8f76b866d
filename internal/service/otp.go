package service

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	otpMin   = 100000
	otpRange = 900000
)

// GenerateOTPCode returns a uniformly random six digit code in 100000..999999.
func GenerateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpRange))
	if err != nil {
		return "", fmt.Errorf("failed to read random code: %w", err)
	}
	return strconv.FormatInt(n.Int64()+otpMin, 10), nil
}

// NewDeviceID formats device_<unix-ms>_<32 hex chars>.
func NewDeviceID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("device_%d_%s", now.UnixMilli(), suffix)
}

func codesEqual(provided, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(provided), []byte(stored)) == 1
}
