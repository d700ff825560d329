package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttributes(t *testing.T) {
	tests := []struct {
		name  string
		attr  slog.Attr
		key   string
		value string
	}{
		{"operation", Operation("ews.get_user_availability"), KeyOperation, "ews.get_user_availability"},
		{"tool", Tool("ews_get_user_availability"), KeyTool, "ews_get_user_availability"},
		{"status", Status(StatusSuccess), KeyStatus, "success"},
		{"timezone", Timezone("Europe/London"), KeyTimezone, "Europe/London"},
		{"request id", RequestID("abc"), KeyRequestID, "abc"},
		{"domain", Domain("jane@example.com"), "mailbox_domain", "example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.value, tt.attr.Value.String())
		})
	}
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("boom"))
	assert.Equal(t, KeyError, attr.Key)
	assert.Equal(t, "boom", attr.Value.String())

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logger.Info("done", Err(nil))
	assert.NotContains(t, buf.String(), KeyError+"=")
}

func TestAnonymizeMailbox(t *testing.T) {
	assert.Equal(t, "", AnonymizeMailbox(""))
	assert.Equal(t, "", AnonymizeMailbox("   "))

	hashed := AnonymizeMailbox("jane@example.com")
	assert.True(t, strings.HasPrefix(hashed, "mailbox:"))
	assert.Len(t, hashed, len("mailbox:")+16)
	assert.NotContains(t, hashed, "jane")

	assert.Equal(t, hashed, AnonymizeMailbox("Jane@Example.com "))
	assert.NotEqual(t, hashed, AnonymizeMailbox("bob@example.com"))

	attr := MailboxHash("jane@example.com")
	assert.Equal(t, KeyMailboxHash, attr.Key)
	assert.Equal(t, hashed, attr.Value.String())
}

func TestSanitizeToken(t *testing.T) {
	assert.Equal(t, "<empty>", SanitizeToken(""))
	assert.Equal(t, "[token:6 chars]", SanitizeToken("secret"))
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"jane@example.com", "example.com"},
		{"", ""},
		{"no-at-sign", ""},
		{"a@b@c", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractDomain(tt.address), tt.address)
	}
}

func TestNewHandler(t *testing.T) {
	var buf bytes.Buffer
	slog.New(NewHandler(&buf, false)).Debug("hidden")
	assert.Empty(t, buf.String())

	slog.New(NewHandler(&buf, true)).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := WithOperation(slog.New(slog.NewTextHandler(&buf, nil)), "ews.send")
	WithTool(logger, "ews_get_user_availability").Info("hello")

	out := buf.String()
	assert.Contains(t, out, "operation=ews.send")
	assert.Contains(t, out, "tool=ews_get_user_availability")
}
