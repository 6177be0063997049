package userbot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportPayload(t *testing.T) {
	option, message := reportPayload("spam", "")
	assert.Equal(t, []byte{}, option)
	assert.Equal(t, "spam", message)

	option, message = reportPayload("violence", "raid in progress")
	assert.Equal(t, []byte{}, option)
	assert.Equal(t, "raid in progress", message)
}

func TestIsNotParticipant(t *testing.T) {
	assert.True(t, isNotParticipant(errors.New("USER_NOT_PARTICIPANT (400)")))
	assert.True(t, isNotParticipant(errors.New("PARTICIPANT_ID_INVALID (400)")))
	assert.False(t, isNotParticipant(errors.New("CHAT_WRITE_FORBIDDEN (403)")))
}
