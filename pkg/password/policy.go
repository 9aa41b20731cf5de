package password

import (
	"errors"
	"strings"
	"unicode"
)

// MinLength 密码最小长度
const MinLength = 8

var (
	ErrTooShort       = errors.New("This password is too short. It must contain at least 8 characters.")
	ErrEntirelyNumber = errors.New("This password is entirely numeric.")
	ErrTooCommon      = errors.New("This password is too common.")
	ErrTooSimilar     = errors.New("The password is too similar to your personal information.")
)

// 常见弱密码
var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "12345678": {}, "123456789": {},
	"1234567890": {}, "qwerty123": {}, "qwertyuiop": {}, "iloveyou": {}, "sunshine": {},
	"princess": {}, "football": {}, "baseball": {}, "welcome1": {}, "admin123": {},
	"abc12345": {}, "letmein1": {}, "trustno1": {}, "passw0rd": {}, "starwars": {},
	"whatever": {}, "dragon123": {}, "michael1": {}, "superman": {}, "1q2w3e4r": {},
	"11111111": {}, "00000000": {}, "asdfghjk": {}, "zaq12wsx": {}, "qazwsxedc": {},
}

// Validate 校验密码强度
// attrs 为用户的个人信息（邮箱、用户名、姓名），密码不能与之过于相似
func Validate(plain string, attrs ...string) error {
	if len([]rune(plain)) < MinLength {
		return ErrTooShort
	}
	if isAllDigits(plain) {
		return ErrEntirelyNumber
	}
	lower := strings.ToLower(plain)
	if _, ok := commonPasswords[lower]; ok {
		return ErrTooCommon
	}
	for _, attr := range attrs {
		if tooSimilar(lower, attr) {
			return ErrTooSimilar
		}
	}
	return nil
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// tooSimilar 密码与属性（或属性中按分隔符拆开的片段）互相包含视为相似
func tooSimilar(lowerPassword, attr string) bool {
	attr = strings.ToLower(strings.TrimSpace(attr))
	if attr == "" {
		return false
	}
	parts := strings.FieldsFunc(attr, func(r rune) bool {
		return r == '@' || r == '.' || r == '_' || r == '-' || unicode.IsSpace(r)
	})
	parts = append(parts, attr)
	for _, part := range parts {
		if len(part) < 4 {
			continue
		}
		if strings.Contains(lowerPassword, part) || strings.Contains(part, lowerPassword) {
			return true
		}
	}
	return false
}
