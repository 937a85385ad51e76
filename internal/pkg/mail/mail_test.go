package mail

import (
	"context"
	"strings"
	"testing"
)

func TestPasswordResetEscapesLink(t *testing.T) {
	msg, err := PasswordReset("office@example.org", "https://church.example/office/reset?token=a&b=<x>")
	if err != nil {
		t.Fatal(err)
	}
	if len(msg.To) != 1 || msg.To[0] != "office@example.org" {
		t.Errorf("to = %v", msg.To)
	}
	if strings.Contains(msg.HTML, "<x>") {
		t.Error("link was not escaped")
	}
}

func TestDisabledSenderIsNoop(t *testing.T) {
	s := New(Config{})
	if s.Enabled() {
		t.Fatal("zero config should be disabled")
	}
	if err := s.Send(context.Background(), Message{To: []string{"a@b.c"}}); err != nil {
		t.Errorf("Send = %v", err)
	}
}
