package utils

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	randomPasswordUpper  = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	randomPasswordLower  = "abcdefghijkmnopqrstuvwxyz"
	randomPasswordDigits = "23456789"
)

// RandomPasswordLength is the length of one-time recovery passwords
const RandomPasswordLength = 8

// FormatPhoneNumber strips separators and keeps an optional leading plus
func FormatPhoneNumber(phone string) string {
	cleaned := phoneCleaner.ReplaceAllString(strings.TrimSpace(phone), "")
	return cleaned
}

// GenerateOTP generates a numeric OTP of specified length
func GenerateOTP(length int) (string, error) {
	if length <= 0 {
		length = 6
	}

	var sb strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate otp: %w", err)
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}
	return sb.String(), nil
}

// GenerateRandomPassword builds a one-time password that satisfies the password rules
func GenerateRandomPassword(length int) (string, error) {
	if length < 3 {
		length = RandomPasswordLength
	}
	all := randomPasswordUpper + randomPasswordLower + randomPasswordDigits

	out := make([]byte, 0, length)
	for _, set := range []string{randomPasswordUpper, randomPasswordLower, randomPasswordDigits} {
		c, err := randomChar(set)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for len(out) < length {
		c, err := randomChar(all)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}

	// shuffle so the class order is not predictable
	for i := len(out) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", fmt.Errorf("failed to shuffle password: %w", err)
		}
		out[i], out[j.Int64()] = out[j.Int64()], out[i]
	}
	return string(out), nil
}

func randomChar(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random password: %w", err)
	}
	return set[n.Int64()], nil
}

// ParseID parses a positive integer path parameter
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// ParseFormBool interprets multipart booleans such as "true" or "1"
func ParseFormBool(raw string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && b
}

// MinutesUntil returns the whole minutes left until t, at least one
func MinutesUntil(t time.Time) int {
	minutes := int(math.Ceil(time.Until(t).Minutes()))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// StoredFileName builds "<base>-<unixms>-<id><ext>" from an uploaded file name
func StoredFileName(original string, now time.Time, id string) string {
	ext := strings.ToLower(filepath.Ext(original))
	base := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	base = Slugify(base)
	if base == "" {
		base = "archivo"
	}
	return fmt.Sprintf("%s-%d-%s%s", base, now.UnixMilli(), id, ext)
}

// Slugify converts a string to a URL-friendly slug
func Slugify(text string) string {
	var sb strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastDash = false
		case !lastDash && sb.Len() > 0:
			sb.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}

// Contains checks if a slice contains an item
func Contains[T comparable](slice []T, item T) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// StringPtr returns nil for an empty string
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// DerefString safely dereferences a string pointer
func DerefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NullIfEmpty maps "" to a SQL NULL argument
func NullIfEmpty(s string) interface{} {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
