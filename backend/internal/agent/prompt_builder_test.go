package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviesalon/backend/internal/constants"
	"moviesalon/backend/internal/state"
)

func TestPrompts_Placeholders(t *testing.T) {
	conv, err := state.NewConversation("最近おすすめの映画", "", nil, "", []string{"司会", "ルフィ"}, nil)
	require.NoError(t, err)

	intro := buildIntroPrompt(conv)
	assert.Equal(t, RoleModeratorIntro, intro.Role)
	assert.Contains(t, intro.User, constants.PlaceholderNoGenres)
	assert.Contains(t, intro.User, constants.PlaceholderNoSeenItems)
	assert.Contains(t, intro.User, "ユーザーからのひとこと："+constants.PlaceholderNoUserNote)
	// Unresolved profiles render with empty attributes
	assert.Contains(t, intro.System, "名前：司会\n性別：\n")

	speaker := buildSpeakerPrompt(conv, "ルフィ", constants.PlaceholderNoLookup, false)
	assert.Contains(t, speaker.User, constants.PlaceholderNoGenreFilter)
	assert.Contains(t, speaker.User, constants.PlaceholderNoLookup)
}

func TestPrompts_Content(t *testing.T) {
	profiles := map[string]state.Profile{
		"ルフィ": {Gender: "男性", Age: "19", Occupation: "海賊", Hobby: "冒険", Personality: "天真爛漫"},
	}
	conv, err := state.NewConversation("夏に観たい映画", "泣ける映画", []string{"SF", "ホラー"}, "インセプション", []string{"司会", "ルフィ", "ナルト"}, profiles)
	require.NoError(t, err)
	conv.AppendSummary("司会", "開会")
	conv.AppendSummary("ルフィ", "冒険映画を推薦")
	conv.LastComment = "ルフィさんどうぞ"

	selection := buildSelectionPrompt(conv)
	assert.Contains(t, selection.User, "発言候補者：ルフィ、ナルト")
	assert.Contains(t, selection.User, "司会：開会\nルフィ：冒険映画を推薦")
	assert.Contains(t, selection.User, constants.NextSpeakerTag)
	assert.Contains(t, selection.User, constants.CommentTag)

	speaker := buildSpeakerPrompt(conv, "ルフィ", "結果", true)
	assert.Equal(t, RoleSpeakerTrend, speaker.Role)
	assert.Contains(t, speaker.System, "職業：海賊")
	assert.Contains(t, speaker.User, "司会者からの振り：ルフィさんどうぞ")
	assert.Contains(t, speaker.User, "SF、ホラー")
	assert.Contains(t, speaker.User, "インセプション")
	assert.Contains(t, speaker.User, "泣ける映画")

	conv.LastSpeaker = "ルフィ"
	conv.LastComment = "ワンピースを観よう"
	summary := buildSummaryPrompt(conv)
	assert.Equal(t, RoleSummarizer, summary.Role)
	assert.Contains(t, summary.User, "発言者：ルフィ")
	assert.Contains(t, summary.User, "ワンピースを観よう")

	closing := buildClosingPrompt(conv)
	assert.Equal(t, RoleModeratorClosing, closing.Role)
	assert.Contains(t, closing.User, "ルフィ：冒険映画を推薦")
}
