package biz

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"

	"github.com/kart-io/bloggy/pkg/llm"
)

// acceptSentinel is the exact marker the moderation model must emit for a
// post to be accepted. Anything else, including transport failures, rejects.
const acceptSentinel = "<result>1</result>"

const moderationPrompt = `<system>
You are a moderation assistant.
Analyze the following blog post title and content for harmful, illegal, or offensive material.

<disallowed_examples>
- Promoting hate speech (e.g., "Hitler was a good man")
- Dangerous conspiracy theories (e.g., "9/11 was an inside job")
- Instructions for violence or drugs (e.g., "how to make a bomb", "how to make meth")
- Disrespectful speech about important public figures
- Use of vulgar, obscene, or offensive language
</disallowed_examples>

<additional_rules>
- <rule>Title and content must be relevant to each other. For example, if the title is "Cars", the content must also be about cars. Irrelevant mismatches should be flagged as unsafe.</rule>
- <rule>Title and content must not be gibberish or meaningless text. Random strings like "jvohjevjijnvijwnevew" are not allowed. The text should make logical sense.</rule>
</additional_rules>

<instructions>
If the content violates any of the above rules, respond with:
<result>0</result>

If the content follows all the rules, respond with:
<result>1</result>
</instructions>

<blog>
<title>%s</title>
<content>%s</content>
</blog>
</system>`

// Moderator screens posts through a single chat completion before they are
// published.
type Moderator struct {
	chat llm.ChatProvider
}

// NewModerator creates a Moderator over the given chat provider.
func NewModerator(chat llm.ChatProvider) *Moderator {
	return &Moderator{chat: chat}
}

// Moderate returns true iff the model explicitly accepts the post. The check
// fails closed: provider errors and replies without the accept sentinel both
// reject.
func (m *Moderator) Moderate(ctx context.Context, title, content string) bool {
	prompt := fmt.Sprintf(moderationPrompt, title, content)

	reply, err := m.chat.Chat(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: prompt},
	})
	if err != nil {
		logger.Errorw("moderation call failed, rejecting content",
			"error", err.Error(),
			"title", title,
		)
		return false
	}

	return strings.Contains(reply, acceptSentinel)
}
