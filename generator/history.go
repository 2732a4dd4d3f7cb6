package generator

import "github.com/ticketsmith/ticketsmith/model"

// DefaultMaxHistory caps conversation growth across feedback rounds.
const DefaultMaxHistory = 32

// History is the ordered message log driving iterative refinement.
// It is owned by exactly one Generate call: seeded with the system and
// user prompts, grown by one assistant/user pair per feedback round,
// and discarded when the call returns.
type History struct {
	messages []model.Message
	max      int
}

func NewHistory(systemPrompt, userPrompt string, max int) *History {
	if max < 4 {
		// Anything below one feedback round on top of the seed
		// messages would immediately drop its own context.
		max = 4
	}
	return &History{
		messages: []model.Message{
			{Role: model.RoleSystem, Content: systemPrompt},
			{Role: model.RoleUser, Content: userPrompt},
		},
		max: max,
	}
}

// Messages returns a snapshot of the conversation.
func (h *History) Messages() []model.Message {
	out := make([]model.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

func (h *History) Len() int {
	return len(h.messages)
}

// AddRound appends the prior assistant response and the next user
// instruction, then trims the oldest post-system pair while the cap is
// exceeded. The system message is always retained at position 0.
func (h *History) AddRound(assistant, user string) {
	h.messages = append(h.messages,
		model.Message{Role: model.RoleAssistant, Content: assistant},
		model.Message{Role: model.RoleUser, Content: user},
	)
	for len(h.messages) > h.max {
		h.messages = append(h.messages[:1], h.messages[3:]...)
	}
}
