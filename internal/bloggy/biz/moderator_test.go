package biz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/bloggy/internal/bloggy/biz"
)

func TestModerateAccept(t *testing.T) {
	chat := &stubChat{chatReply: "Analysis complete. <result>1</result>"}
	moderator := biz.NewModerator(chat)

	assert.True(t, moderator.Moderate(context.Background(), "Go tips", "Use contexts."))
}

func TestModerateReject(t *testing.T) {
	chat := &stubChat{chatReply: "<result>0</result>"}
	moderator := biz.NewModerator(chat)

	assert.False(t, moderator.Moderate(context.Background(), "spam", "buy now"))
}

func TestModerateFailsClosed(t *testing.T) {
	chat := &stubChat{chatErr: errors.New("rate limited")}
	moderator := biz.NewModerator(chat)

	assert.False(t, moderator.Moderate(context.Background(), "Go tips", "Use contexts."))
}

func TestModerateMalformedVerdictRejects(t *testing.T) {
	chat := &stubChat{chatReply: "looks fine to me"}
	moderator := biz.NewModerator(chat)

	assert.False(t, moderator.Moderate(context.Background(), "Go tips", "Use contexts."))
}

func TestModeratePromptCarriesPost(t *testing.T) {
	chat := &stubChat{chatReply: "<result>1</result>"}
	moderator := biz.NewModerator(chat)

	moderator.Moderate(context.Background(), "My Title", "My body text.")

	require.Len(t, chat.lastChat, 1)
	assert.Contains(t, chat.lastChat[0].Content, "<title>My Title</title>")
	assert.Contains(t, chat.lastChat[0].Content, "<content>My body text.</content>")
}
