package bot

import (
	"fmt"
	"time"

	"community-bot-backend/internal/platform/telegram"
)

// Button callback identifiers. String-typed and opaque to the transport.
const (
	callbackVerifyPromo = "verify_promo"
	callbackNoCode      = "no_code"
	callbackAccessBots  = "access_bots"
	callbackExit        = "exit"

	callbackPending       = "admin_pending"
	callbackApprovePrefix = "approve:"
	callbackRejectPrefix  = "reject:"
)

const (
	replyAskPlayerID     = "Please send your player ID for verification."
	replySubmissionAck   = "Verification in progress... An administrator will review your request."
	replyAccessBots      = "Here is the bot menu..."
	replyLeftMenu        = "You have left the menu."
	replyConversationEnd = "Conversation closed. Send /start to begin again."

	replyAskAdminCode   = "Please enter the administrator access code."
	replyAdminAlready   = "You are already connected as an administrator. Here is the menu."
	replyAdminWrongCode = "Incorrect code."
	replyAdminThrottled = "Too many attempts. Please wait a minute before trying again."
	replyAdminExpired   = "Your admin session has expired. Send the access code again to reconnect."
	replyNoPending      = "No pending verifications."
	replyApproved       = "Approved."
	replyRejected       = "Rejected."
	replyUserApproved   = "Your registration has been verified. Welcome!"
	replyUserRejected   = "Your verification request was declined. Contact an administrator for details."

	replyInternalError = "Something went wrong. Please try again later."
)

func adminGrantedReply(duration time.Duration) string {
	return fmt.Sprintf(
		"Administrator access granted for %d minutes. Here is the admin menu.",
		int(duration.Minutes()),
	)
}

func greetingNew(name, channelLink, promoCode string) string {
	return fmt.Sprintf(
		"Hello %s, welcome to our community!\nJoin our official channel: %s\nAre you already registered with the promo code %s?",
		name, channelLink, promoCode,
	)
}

func greetingKnown(name string) string {
	return fmt.Sprintf("Hello %s, good to see you again!", name)
}

func noCodeReply(adminContact string) string {
	return fmt.Sprintf("No problem! To get the promo code and register, contact %s.", adminContact)
}

func newUserKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{{Text: "Yes, verify my registration", CallbackData: callbackVerifyPromo}},
			{{Text: "No, I don't have a code", CallbackData: callbackNoCode}},
		},
	}
}

func knownUserKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{{Text: "Access bots", CallbackData: callbackAccessBots}},
		},
	}
}

func adminMenuKeyboard() *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{{Text: "Pending verifications", CallbackData: callbackPending}},
			{{Text: "Exit", CallbackData: callbackExit}},
		},
	}
}

func reviewKeyboard(userID string) *telegram.InlineKeyboardMarkup {
	return &telegram.InlineKeyboardMarkup{
		InlineKeyboard: [][]telegram.InlineKeyboardButton{
			{
				{Text: "Approve", CallbackData: callbackApprovePrefix + userID},
				{Text: "Reject", CallbackData: callbackRejectPrefix + userID},
			},
		},
	}
}
