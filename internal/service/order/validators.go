package order

import (
	"strings"

	"storefront/internal/entities"
)

const (
	defaultCountryCode = "27"
	// длина национального номера без 0 и кода страны
	nationalDigits = 9
	minE164Digits  = 8
	maxE164Digits  = 15
)

func isValidID(id string) bool {
	return strings.TrimSpace(id) != ""
}

func isValidItem(item entities.OrderItem) bool {
	return strings.TrimSpace(item.Name) != "" &&
		item.Quantity > 0 &&
		!item.UnitPrice.IsNegative()
}

// NormalizePhone приводит номер к E.164. Локальный формат 0XXXXXXXXX и
// национальный номер без 0 считаются номерами страны по умолчанию,
// иначе номер без плюса должен начинаться с кода страны.
func NormalizePhone(phone string) (string, bool) {
	replacer := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")
	phone = replacer.Replace(strings.TrimSpace(phone))
	if phone == "" {
		return "", false
	}

	var digits string
	switch {
	case strings.HasPrefix(phone, "+"):
		digits = phone[1:]
	case strings.HasPrefix(phone, "00"):
		digits = phone[2:]
	case strings.HasPrefix(phone, "0"):
		digits = defaultCountryCode + phone[1:]
	case len(phone) == nationalDigits:
		digits = defaultCountryCode + phone
	default:
		digits = phone
	}

	if len(digits) < minE164Digits || len(digits) > maxE164Digits || digits[0] == '0' {
		return "", false
	}
	for _, char := range digits {
		if char < '0' || char > '9' {
			return "", false
		}
	}
	return "+" + digits, true
}

func isForwardStep(expected, next entities.OrderStatusType) bool {
	return expected.IsValid() && next.IsValid() && next.Rank() == expected.Rank()+1
}
