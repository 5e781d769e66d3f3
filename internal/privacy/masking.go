package privacy

import (
	"fmt"
	"strings"

	"wasim/internal/constants"
)

// MaskPhoneNumber masks a phone number showing only the last 4 digits
// Example: "+14155552671" -> "+*******2671"
func MaskPhoneNumber(phone string) string {
	if phone == "" {
		return ""
	}

	if strings.HasPrefix(phone, "+") {
		if len(phone) == 1 {
			return phone
		}
		return "+" + maskString(phone[1:], constants.DefaultPhoneMaskLength)
	}
	return maskString(phone, constants.DefaultPhoneMaskLength)
}

// MaskJID masks the user part of a JID and keeps the server part
// Example: "14155552671@s.whatsapp.net" -> "*******2671@s.whatsapp.net"
func MaskJID(jid string) string {
	if jid == "" {
		return ""
	}

	if i := strings.IndexByte(jid, '@'); i >= 0 {
		return maskString(jid[:i], constants.DefaultPhoneMaskLength) + jid[i:]
	}
	return maskString(jid, constants.DefaultPhoneMaskLength)
}

// MaskRecipient masks either a JID or a phone number
func MaskRecipient(recipient string) string {
	if strings.Contains(recipient, "@") {
		return MaskJID(recipient)
	}
	return MaskPhoneNumber(recipient)
}

// MaskMessageID shows the last 8 characters of a message ID
func MaskMessageID(messageID string) string {
	return maskString(messageID, constants.DefaultMessageIDLength)
}

// MaskResourceName masks a contact resource name, keeping the "people/" prefix
// Example: "people/c1234567" -> "people/****4567"
func MaskResourceName(resourceName string) string {
	if strings.HasPrefix(resourceName, constants.ResourceNamePrefix) {
		rest := strings.TrimPrefix(resourceName, constants.ResourceNamePrefix)
		return constants.ResourceNamePrefix + MaskJID(rest)
	}
	return maskString(resourceName, 4)
}

// MaskText replaces message content with its length
func MaskText(text string) string {
	if text == "" {
		return ""
	}
	return fmt.Sprintf("[%d chars]", len([]rune(text)))
}

// maskString masks a string showing only the last n characters
func maskString(s string, keepLast int) string {
	if s == "" {
		return ""
	}

	if len(s) <= keepLast {
		return strings.Repeat("*", len(s))
	}

	return strings.Repeat("*", len(s)-keepLast) + s[len(s)-keepLast:]
}

// MaskSensitiveFields applies appropriate masking to common logging fields
func MaskSensitiveFields(fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		return nil
	}

	masked := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		s, ok := v.(string)
		if !ok {
			masked[k] = v
			continue
		}
		switch k {
		case "phone", "phone_number", "sender_phone_number":
			masked[k] = MaskPhoneNumber(s)
		case "jid", "chat_jid", "sender_jid", "current_user_jid":
			masked[k] = MaskJID(s)
		case "recipient":
			masked[k] = MaskRecipient(s)
		case "message_id", "reply_to_message_id", "quoted_message_id":
			masked[k] = MaskMessageID(s)
		case "resource_name":
			masked[k] = MaskResourceName(s)
		case "message", "text_content", "query", "caption":
			masked[k] = MaskText(s)
		default:
			masked[k] = v
		}
	}

	return masked
}
