package utils

import (
	"encoding/hex"
	"strconv"
	"time"
)

func BytesToHex(bytes []byte) string {
	return hex.EncodeToString(bytes)
}

func HexToBytes(str string) ([]byte, error) {
	bytes, err := hex.DecodeString(str)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}

// FormatAmount renders an amount in its shortest exact decimal form, e.g. 100 -> "100", 0.5 -> "0.5".
func FormatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func FormatInt64(i int64) string {
	return strconv.FormatInt(i, 10)
}

// NowMillis returns the current unix time in milliseconds.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// The string of public key and hash is just too long to print, instead we take only first 6 and last 6
// characters and replace the middle part with '...'.
func ShortenString(s string) string {
	if len(s) < 15 {
		return s
	}
	return s[0:6] + "..." + s[len(s)-6:]
}
