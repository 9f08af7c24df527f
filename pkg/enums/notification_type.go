package enums

import "fmt"

// NotificationType classifies in-app notifications.
type NotificationType string

const (
	NotificationTypeExpenseAdded      NotificationType = "expense_added"
	NotificationTypeSettlementSent    NotificationType = "settlement_sent"
	NotificationTypeSettlementReceipt NotificationType = "settlement_received"
	NotificationTypeFlokoutConfirmed  NotificationType = "flokout_confirmed"
	NotificationTypeFlokInvite        NotificationType = "flok_invite"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeExpenseAdded,
	NotificationTypeSettlementSent,
	NotificationTypeSettlementReceipt,
	NotificationTypeFlokoutConfirmed,
	NotificationTypeFlokInvite,
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
}

// IsValid reports whether the value is a known NotificationType.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
