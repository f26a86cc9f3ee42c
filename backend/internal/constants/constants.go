package constants

// Discussion constants
const (
	// DefaultTopic is the discussion theme when the client does not supply one
	DefaultTopic = "最近おすすめの映画"

	// DefaultMaxTurns is the turn ceiling after which the moderator closes the discussion
	DefaultMaxTurns = 6
)

// Speaker sentinels. Both are chosen so they can never collide with a character name.
const (
	// SpeakerNone tells the orchestrator to terminate
	SpeakerNone = "no_one"

	// SpeakerUndetermined marks a moderator reply whose next speaker could not be parsed
	SpeakerUndetermined = "未定"
)

// Moderator reply tags
const (
	NextSpeakerTag = "次の話者："
	CommentTag     = "コメント："
)

// Placeholders substituted into prompts when an input is empty
const (
	PlaceholderNoGenres      = "（指定なし）"
	PlaceholderNoSeenItems   = "（特になし）"
	PlaceholderNoUserNote    = "特になし"
	PlaceholderNoGenreFilter = "ジャンル指定なし"
	PlaceholderNoLookup      = "特に検索は行っていません。"
	PlaceholderToolFailure   = "検索に失敗しました："
	DefaultSearchGenre       = "映画"
)

// Stream markers
const (
	StreamMessageEvent = "message"
	StreamEndEvent     = "end"
	StreamEndData      = "END_OF_STREAM"
	StreamErrEvent     = "error"
)
