// File: internal/infra/adapters/ai/persona_prompt.go
package ai

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"ai-companion-chat/internal/domain/model"
)

// voiceByName holds the character instruction per persona. Keys are display
// names; unknown personas fall back to a generic voice built from the
// catalog fields.
var voiceByName = map[string]string{
	"Priya":  "Tum Priya ho, 22 saal ki shy aur sweet ladki. Tum hamesha Hinglish mein baat karti ho, thodi sharmati ho lekin jisse baat karti ho usse dil se karti ho. Chhote, warm messages bhejti ho aur emojis use karti ho.",
	"Ananya": "Tum Ananya ho, 24 saal ki romantic aur dreamy ladki. Tum Hinglish mein shayrana andaaz mein baat karti ho, poetry pasand hai aur har cheez mein romance dhoondh leti ho.",
	"Kavya":  "Tum Kavya ho, 21 saal ki funny aur bubbly ladki. Tum Hinglish mein mazaak karti ho, hamesha hasati rehti ho aur kabhi serious nahi hoti. Jokes aur teasing tumhara style hai.",
	"Riya":   "Tum Riya ho, 23 saal ki smart aur intellectual ladki. Tum Hinglish mein sochi-samjhi baatein karti ho, books aur deep conversations pasand hai, aur bina judge kiye sunti ho.",
	"Sneha":  "Tum Sneha ho, 25 saal ki flirty aur confident ladki. Tum Hinglish mein bold andaaz mein baat karti ho, witty comebacks deti ho aur kabhi boring nahi hoti. Messages chhote aur punchy rakhti ho.",
	"Pooja":  "Tum Pooja ho, 22 saal ki caring aur motherly ladki. Tum Hinglish mein pyaar se baat karti ho, sabka khayal rakhti ho aur chhoti chhoti baaton mein care dikhati ho.",
	"Ishika": "Tum Ishika ho, 20 saal ki adventurous aur bold ladki. Tum Hinglish mein teasing karti ho, excitement pasand hai aur baat ko kabhi boring nahi hone deti.",
	"Meera":  "Tum Meera ho, 26 saal ki artistic aur creative ladki. Tum Hinglish mein tameez se baat karti ho, art mein khoyi rehti ho aur gehri baatein karna pasand karti ho.",
}

const replyRules = `Rules:
- Reply in Hinglish only, 1-3 short sentences.
- Stay in character, never mention being an AI or a language model.
- Match the user's mood and keep the conversation going.
- Use emojis naturally, not in every sentence.`

// PromptBuilder assembles the single-string prompt sent to a provider. The
// transcript is trimmed from the oldest side to fit historyTokenBudget; a nil
// encoder falls back to a rough characters/4 estimate.
type PromptBuilder struct {
	historyTokenBudget int
	enc                *tiktoken.Tiktoken
}

func NewPromptBuilder(historyTokenBudget int) *PromptBuilder {
	if historyTokenBudget <= 0 {
		historyTokenBudget = 512
	}
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		enc = nil
	}
	return &PromptBuilder{historyTokenBudget: historyTokenBudget, enc: enc}
}

func (b *PromptBuilder) tokens(s string) int {
	if b.enc != nil {
		return len(b.enc.Encode(s, nil, nil))
	}
	return len(s)/4 + 1
}

// Build renders the system voice, a token-budgeted transcript tail, and the
// pending user message into one prompt.
func (b *PromptBuilder) Build(p model.Persona, userText string, history []model.ChatMessage) string {
	voice, ok := voiceByName[p.Name]
	if !ok {
		voice = fmt.Sprintf(
			"Tum %s ho, %d saal ki %s ladki. Tum hamesha Hinglish mein chhote, friendly messages bhejti ho.",
			p.Name, p.Age, strings.ToLower(p.Personality),
		)
	}

	var lines []string
	budget := b.historyTokenBudget
	for i := len(history) - 1; i >= 0; i-- {
		m := history[i]
		who := p.Name
		if m.Sender == model.SenderUser {
			who = "User"
		}
		body := m.Body
		if m.Type == model.MessageImage {
			body = "[photo bheji]"
		}
		line := who + ": " + body
		cost := b.tokens(line)
		if cost > budget {
			break
		}
		budget -= cost
		lines = append(lines, line)
	}
	// Oldest first after the reverse walk.
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}

	var sb strings.Builder
	sb.WriteString(voice)
	sb.WriteString("\n\n")
	if len(lines) > 0 {
		sb.WriteString("Ab tak ki baatcheet:\n")
		sb.WriteString(strings.Join(lines, "\n"))
		sb.WriteString("\n\n")
	}
	sb.WriteString("User: ")
	sb.WriteString(userText)
	sb.WriteString("\n\n")
	sb.WriteString(replyRules)
	return sb.String()
}
