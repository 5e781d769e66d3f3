package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"wasim/internal/constants"
	"wasim/internal/errors"
)

var (
	individualJIDPattern = regexp.MustCompile(`^[^@]+@s\.whatsapp\.net$`)
	groupJIDPattern      = regexp.MustCompile(`^[^@]+@g\.us$`)
)

// Layouts accepted for timestamp filters, tried in order. Zone-less layouts are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// IsIndividualJID reports whether jid is a person JID
func IsIndividualJID(jid string) bool {
	return individualJIDPattern.MatchString(jid)
}

// IsGroupJID reports whether jid is a group JID
func IsGroupJID(jid string) bool {
	return groupJIDPattern.MatchString(jid)
}

// IsJID reports whether jid is either a person or a group JID
func IsJID(jid string) bool {
	return IsIndividualJID(jid) || IsGroupJID(jid)
}

// JIDLocalPart returns everything before the '@'
func JIDLocalPart(jid string) string {
	if i := strings.IndexByte(jid, '@'); i >= 0 {
		return jid[:i]
	}
	return jid
}

// NormalizePhoneNumber strips formatting characters and keeps a single leading '+'.
// The result must hold MinPhoneDigits..MaxPhoneDigits digits and nothing else.
func NormalizePhoneNumber(phone string) (string, error) {
	trimmed := strings.TrimSpace(phone)
	if trimmed == "" {
		return "", errors.NewInvalidPhoneNumberError("phone number cannot be empty")
	}

	var b strings.Builder
	for i, char := range trimmed {
		switch {
		case char == '+' && i == 0:
			b.WriteRune(char)
		case char == ' ' || char == '-' || char == '(' || char == ')' || char == '.':
			continue
		case unicode.IsDigit(char) && char <= unicode.MaxASCII:
			b.WriteRune(char)
		default:
			return "", errors.NewInvalidPhoneNumberError(
				fmt.Sprintf("Invalid phone number format: %s", phone))
		}
	}

	normalized := b.String()
	digits := len(PhoneDigits(normalized))
	if digits < constants.MinPhoneDigits || digits > constants.MaxPhoneDigits {
		return "", errors.NewInvalidPhoneNumberError(
			fmt.Sprintf("Invalid phone number format: %s", phone))
	}
	return normalized, nil
}

// PhoneDigits returns only the digits of a phone value. Two numbers are the same
// subscriber when their digits match.
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, char := range phone {
		if char >= '0' && char <= '9' {
			b.WriteRune(char)
		}
	}
	return b.String()
}

// ParseTimestamp parses an ISO-8601 filter value. An empty value means no filter.
func ParseTimestamp(value, param string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
			utc := t.UTC()
			return &utc, nil
		}
	}
	return nil, errors.NewInvalidDateTimeFormatError(param, value)
}

// ValidateMessageID validates message ID format and length
func ValidateMessageID(messageID string) error {
	if strings.TrimSpace(messageID) == "" {
		return errors.NewValidationError("message_id", "Message ID must be a non-empty string.")
	}

	if len(messageID) > constants.MaxMessageIDLength {
		return errors.NewValidationError("message_id",
			fmt.Sprintf("message ID too long (max %d characters)", constants.MaxMessageIDLength))
	}

	for _, char := range messageID {
		if char == '\x00' || char == '\n' || char == '\r' || char == '\t' {
			return errors.NewValidationError("message_id", "message ID contains invalid characters")
		}
	}

	return nil
}

// ValidateNumericRange validates numeric values against bounds
func ValidateNumericRange(value int, fieldName string, min, max int) error {
	if value < min || value > max {
		return errors.NewInvalidParameterError(fieldName,
			fmt.Sprintf("%s must be between %d and %d.", fieldName, min, max))
	}
	return nil
}

// Field pairs an argument name with its value
type Field struct {
	Name  string
	Value int
}

// ValidateNonNegative rejects negative paging and window arguments with the generic
// shape error. The first negative field in argument order is reported.
func ValidateNonNegative(fields ...Field) error {
	for _, f := range fields {
		if f.Value < 0 {
			return errors.NewValidationError(f.Name, "")
		}
	}
	return nil
}

// ValidateTimeout validates timeout values
func ValidateTimeout(timeoutSec int, fieldName string) error {
	if timeoutSec < 1 {
		return errors.NewConfigError(fieldName, fmt.Sprintf("%s must be at least 1 second", fieldName))
	}

	if timeoutSec > 3600 {
		return errors.NewConfigError(fieldName, fmt.Sprintf("%s too large (max 3600 seconds)", fieldName))
	}

	return nil
}
