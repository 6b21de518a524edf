package forum

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Validation constants. Lengths mirror the server's limits.
const (
	MaxIDLength       = 32
	MaxNicknameLength = 32
	MaxTitleLength    = 100
	MaxBodyLength     = 10000
	MaxCommentLength  = 1000
	MaxKeywordLength  = 100
)

// ErrValidation is wrapped by every validation failure.
var ErrValidation = errors.New("validation failed")

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NormalizeInput canonicalises user-entered text (NFC) and trims surrounding
// whitespace, so visually identical inputs compare equal on the server.
func NormalizeInput(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

func validateText(s, label string, maxLen int) error {
	if s == "" {
		return validationErrorf("%s must not be empty", label)
	}
	if len(s) > maxLen {
		return validationErrorf("%s exceeds maximum length of %d", label, maxLen)
	}
	if !utf8.ValidString(s) {
		return validationErrorf("%s contains invalid UTF-8", label)
	}
	return nil
}

// ValidateMemberID checks a login/member ID: non-empty, bounded, printable,
// no whitespace.
func ValidateMemberID(id string) error {
	if err := validateText(id, "member ID", MaxIDLength); err != nil {
		return err
	}
	for _, r := range id {
		if unicode.IsSpace(r) {
			return validationErrorf("member ID contains whitespace")
		}
		if unicode.IsControl(r) {
			return validationErrorf("member ID contains control character")
		}
	}
	return nil
}

// ValidateNickname checks a display name: non-empty, bounded, no control
// characters.
func ValidateNickname(nickname string) error {
	if err := validateText(nickname, "nickname", MaxNicknameLength); err != nil {
		return err
	}
	for _, r := range nickname {
		if unicode.IsControl(r) {
			return validationErrorf("nickname contains control character")
		}
	}
	return nil
}

// ValidateEmail performs the light-weight shape check the server also
// applies; real verification happens via the confirmation mail.
func ValidateEmail(email string) error {
	if err := validateText(email, "email", 254); err != nil {
		return err
	}
	at := strings.IndexByte(email, '@')
	if at <= 0 || at == len(email)-1 || strings.IndexByte(email[at+1:], '.') <= 0 {
		return validationErrorf("email %q is not a valid address", email)
	}
	return nil
}

// ValidatePostInput checks a post/question/answer payload before submission.
func ValidatePostInput(in PostInput) error {
	if err := validateText(in.Title, "title", MaxTitleLength); err != nil {
		return err
	}
	return validateText(in.TextBody, "text body", MaxBodyLength)
}

// ValidateCommentBody checks a comment body before submission.
func ValidateCommentBody(body string) error {
	return validateText(body, "comment body", MaxCommentLength)
}

// ValidateSearchQuery checks a keyword search: a keyword is required and at
// least one field flag must be set.
func ValidateSearchQuery(q SearchQuery) error {
	if err := validateText(q.Keyword, "keyword", MaxKeywordLength); err != nil {
		return err
	}
	if q.Title == 0 && q.Text == 0 && q.User == 0 {
		return validationErrorf("search must target at least one field")
	}
	return nil
}
