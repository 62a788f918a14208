package service

import (
	"testing"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestSenderID(t *testing.T) {
	// group chat: the chat id is the group's, the command is the member's
	group := &tgbot.Message{
		From: &tgbot.User{ID: 42},
		Chat: &tgbot.Chat{ID: -100123456},
	}
	if id, ok := senderID(group); !ok || id != 42 {
		t.Errorf("senderID = %d, %v, want 42", id, ok)
	}

	if _, ok := senderID(&tgbot.Message{Chat: &tgbot.Chat{ID: 7}}); ok {
		t.Error("message without a sender must be ignored")
	}
	if _, ok := senderID(nil); ok {
		t.Error("nil message must be ignored")
	}
}
