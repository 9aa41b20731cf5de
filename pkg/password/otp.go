package password

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// GenerateOTP 生成指定位数的数字验证码（crypto/rand）
func GenerateOTP(digits int) (string, error) {
	var b strings.Builder
	b.Grow(digits)
	ten := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
