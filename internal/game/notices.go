package game

// Notice is a presentation-neutral message. Key selects a template in the
// display layer; Args fill it in order.
type Notice struct {
	Key  string `json:"key"`
	Args []any  `json:"args,omitempty"`
}

// Notice keys emitted by the engine.
const (
	NoticeWelcome           = "welcome"
	NoticeNicknameBlank     = "nickname.blank"
	NoticeNicknameConfirmed = "nickname.confirmed"
	NoticePickCategory      = "category.pick"
	NoticeUnknownCategory   = "category.unknown"
	NoticePhrase            = "phrase.presented"
	NoticePhraseFailed      = "phrase.failed"
	NoticeAnswerBlank       = "answer.blank"
	NoticeFeedback          = "feedback"
	NoticeJudgeFailed       = "judge.failed"
	NoticeBonusOffer        = "bonus.offer"
	NoticeBonusUnclear      = "bonus.unclear"
	NoticeBonusAccepted     = "bonus.accepted"
	NoticeKeepPoints        = "bonus.declined"
	NoticeRoundPerfect      = "round.perfect"
	NoticeRoundForfeited    = "round.forfeited"
	NoticeRoundWait         = "round.wait"
	NoticeNextRound         = "round.next"
	NoticePerfectGame       = "game.perfect"
	NoticeGameOver          = "game.over"
	NoticeSaveFailed        = "score.save_failed"
)

// Prompt keys describe what the input box should ask for next.
const (
	PromptNickname = "prompt.nickname"
	PromptCategory = "prompt.category"
	PromptSource   = "prompt.source"
	PromptYear     = "prompt.year"
	PromptCreator  = "prompt.creator"
	PromptArtist   = "prompt.artist"
	PromptDirector = "prompt.director"
	PromptAuthor   = "prompt.author"
	PromptBonus    = "prompt.bonus"
	PromptWait     = "prompt.wait"
	PromptNone     = "prompt.none"
)

func say(key string, args ...any) Say {
	return Say{Notice: Notice{Key: key, Args: args}}
}

// PromptFor returns the prompt key matching the session's current state.
func PromptFor(s Session) string {
	if s.Pending != nil {
		return PromptWait
	}
	switch s.Phase {
	case PhaseGreeting:
		return PromptNickname
	case PhaseSelecting:
		return PromptCategory
	case PhaseAwaitingBonusChoice:
		return PromptBonus
	case PhaseAwaitingAnswer:
		return stagePrompt(s.Category, s.Stage)
	case PhaseRoundResolved:
		return PromptWait
	}
	return PromptNone
}

func stagePrompt(c Category, st Stage) string {
	switch st {
	case StageYear:
		return PromptYear
	case StageCreator:
		switch c.Info().CreatorRole {
		case "artist":
			return PromptArtist
		case "director":
			return PromptDirector
		case "author":
			return PromptAuthor
		}
		return PromptCreator
	}
	return PromptSource
}
