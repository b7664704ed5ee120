package auth

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// FieldError - ошибка валидации, привязанная к конкретному полю запроса
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// короткий список самых ходовых паролей, по мотивам common-password валидатора
var commonPasswords = []string{
	"password", "password1", "password123", "123456", "1234567", "12345678",
	"123456789", "1234567890", "qwerty", "qwerty123", "abc123", "iloveyou",
	"admin", "welcome", "monkey", "dragon", "letmein", "football", "baseball",
	"sunshine", "princess", "master", "shadow", "superman", "batman",
	"trustno1", "passw0rd", "qwertyuiop", "111111", "000000",
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("хеширование пароля: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword прогоняет пароль через все проверки политики и
// возвращает полный список нарушений, а не первое попавшееся
func ValidatePassword(password, username, email string, minLength int) []FieldError {
	var errs []FieldError

	if len(password) < minLength {
		errs = append(errs, FieldError{
			Field:  "password",
			Reason: fmt.Sprintf("пароль должен быть не короче %d символов", minLength),
		})
	}

	if isEntirelyNumeric(password) {
		errs = append(errs, FieldError{
			Field:  "password",
			Reason: "пароль не может состоять только из цифр",
		})
	}

	lower := strings.ToLower(password)
	for _, common := range commonPasswords {
		if lower == common {
			errs = append(errs, FieldError{
				Field:  "password",
				Reason: "пароль слишком распространённый",
			})
			break
		}
	}

	if tooSimilar(lower, username) || tooSimilar(lower, emailLocalPart(email)) {
		errs = append(errs, FieldError{
			Field:  "password",
			Reason: "пароль слишком похож на имя пользователя или email",
		})
	}

	return errs
}

func isEntirelyNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// пароль считается похожим на атрибут, если один содержит другой
func tooSimilar(password, attribute string) bool {
	attribute = strings.ToLower(attribute)
	if len(attribute) < 3 {
		return false
	}
	return strings.Contains(password, attribute) || strings.Contains(attribute, password)
}

func emailLocalPart(email string) string {
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
