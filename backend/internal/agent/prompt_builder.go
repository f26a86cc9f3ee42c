package agent

import (
	"fmt"
	"strings"

	"moviesalon/backend/internal/constants"
	"moviesalon/backend/internal/state"
)

// Role names, used in prompts, metrics and generation errors
const (
	RoleModeratorIntro     = "moderator_intro"
	RoleModeratorSelection = "moderator_selection"
	RoleModeratorClosing   = "moderator_closing"
	RoleSpeaker            = "speaker"
	RoleSpeakerTrend       = "speaker_trend"
	RoleSummarizer         = "summarizer"
)

// RolePrompt is the system/user message pair for one generation
type RolePrompt struct {
	Role   string
	System string
	User   string
}

// buildPersona renders a character sheet. Missing attributes render as empty values.
func buildPersona(name string, p state.Profile) string {
	var b strings.Builder
	fmt.Fprintf(&b, "名前：%s\n", name)
	fmt.Fprintf(&b, "性別：%s\n", p.Gender)
	fmt.Fprintf(&b, "年齢：%s\n", p.Age)
	fmt.Fprintf(&b, "職業：%s\n", p.Occupation)
	fmt.Fprintf(&b, "趣味：%s\n", p.Hobby)
	fmt.Fprintf(&b, "性格：%s", p.Personality)
	return b.String()
}

func hostSystemPrompt(conv *state.Conversation) string {
	host := conv.Host()
	return fmt.Sprintf(`あなたは映画好きが集まる座談会の司会者「%s」です。
以下のキャラクターになりきり、その口調と性格で話してください。

## キャラクター
%s

## ルール
- 座談会のテーマから話題を逸らさない
- 参加者の名前を正確に呼ぶ
- 絵文字やマークダウンは使わない`, host, buildPersona(host, conv.Profile(host)))
}

func genresText(conv *state.Conversation, placeholder string) string {
	if len(conv.Genres) == 0 {
		return placeholder
	}
	return strings.Join(conv.Genres, "、")
}

func seenText(conv *state.Conversation) string {
	if strings.TrimSpace(conv.SeenItems) == "" {
		return constants.PlaceholderNoSeenItems
	}
	return conv.SeenItems
}

func noteText(conv *state.Conversation) string {
	if strings.TrimSpace(conv.UserNote) == "" {
		return constants.PlaceholderNoUserNote
	}
	return conv.UserNote
}

func summariesText(conv *state.Conversation) string {
	if len(conv.Summaries) == 0 {
		return "（まだ発言はありません）"
	}
	return conv.RenderSummaries()
}

// buildIntroPrompt opens the discussion
func buildIntroPrompt(conv *state.Conversation) RolePrompt {
	user := fmt.Sprintf(`## 座談会の情報
テーマ：%s
参加者：%s
ユーザーの好きなジャンル：%s
ユーザーが最近観た映画：%s
ユーザーからのひとこと：%s

座談会の冒頭として、挨拶とテーマの紹介をしてください。
参加者の顔ぶれとユーザーの好みに軽く触れ、200文字程度でまとめてください。`,
		conv.Topic,
		strings.Join(conv.Participants, "、"),
		genresText(conv, constants.PlaceholderNoGenres),
		seenText(conv),
		noteText(conv),
	)
	return RolePrompt{Role: RoleModeratorIntro, System: hostSystemPrompt(conv), User: user}
}

// buildSelectionPrompt asks the moderator to pick the next guest in the tagged format ParseSelection reads
func buildSelectionPrompt(conv *state.Conversation) RolePrompt {
	user := fmt.Sprintf(`## 座談会の情報
テーマ：%s
発言候補者：%s

## これまでの発言の要約
%s

議論の流れを踏まえて、次に発言してもらう人を発言候補者の中から1人だけ選び、その人に話を振るコメントをしてください。
あなた自身を選んではいけません。
必ず次の形式で答えてください。

%s<名前>
%s<司会としてのコメント>`,
		conv.Topic,
		strings.Join(conv.Guests(), "、"),
		summariesText(conv),
		constants.NextSpeakerTag,
		constants.CommentTag,
	)
	return RolePrompt{Role: RoleModeratorSelection, System: hostSystemPrompt(conv), User: user}
}

// buildClosingPrompt wraps up the discussion
func buildClosingPrompt(conv *state.Conversation) RolePrompt {
	user := fmt.Sprintf(`## 座談会の情報
テーマ：%s

## これまでの発言の要約
%s

座談会を締めくくってください。
話題に上がった映画を振り返り、参加者へのお礼を述べて、300文字程度でまとめてください。`,
		conv.Topic,
		summariesText(conv),
	)
	return RolePrompt{Role: RoleModeratorClosing, System: hostSystemPrompt(conv), User: user}
}

// buildSpeakerPrompt grounds a guest's contribution in lookup output
func buildSpeakerPrompt(conv *state.Conversation, speaker, lookup string, trend bool) RolePrompt {
	system := fmt.Sprintf(`あなたは映画座談会に招かれたゲスト「%s」です。
以下のキャラクターになりきり、その口調と性格で話してください。

## キャラクター
%s

## ルール
- 参考情報にない映画の公開日や評価をでっち上げない
- 絵文字やマークダウンは使わない`, speaker, buildPersona(speaker, conv.Profile(speaker)))

	role := RoleSpeaker
	task := `参考情報とこれまでの流れを踏まえて、ユーザーにおすすめしたい映画を1本挙げ、
あなたらしい理由とともに200文字程度で話してください。
ユーザーが最近観た映画はおすすめしないでください。`
	if trend {
		role = RoleSpeakerTrend
		task = `参考情報は現在の映画のトレンドです。
この中からユーザーの好みに合いそうな映画を1本選び、見どころを200文字程度で紹介してください。
ユーザーが最近観た映画はおすすめしないでください。`
	}

	user := fmt.Sprintf(`## 座談会の情報
テーマ：%s
司会者からの振り：%s
ユーザーの好きなジャンル：%s
ユーザーが最近観た映画：%s
ユーザーからのひとこと：%s

## これまでの発言の要約
%s

## 参考情報
%s

%s`,
		conv.Topic,
		conv.LastComment,
		genresText(conv, constants.PlaceholderNoGenreFilter),
		seenText(conv),
		noteText(conv),
		summariesText(conv),
		lookup,
		task,
	)
	return RolePrompt{Role: role, System: system, User: user}
}

// buildSummaryPrompt condenses the latest contribution
func buildSummaryPrompt(conv *state.Conversation) RolePrompt {
	system := `あなたは映画座談会の書記です。
発言の要点を、挙げられた映画のタイトルと理由が分かるように簡潔にまとめます。
要約だけを出力し、前置きは書かないでください。`

	user := fmt.Sprintf(`テーマ：%s
発言者：%s
発言内容：
%s

上記の発言を50文字程度で要約してください。`,
		conv.Topic,
		conv.LastSpeaker,
		conv.LastComment,
	)
	return RolePrompt{Role: RoleSummarizer, System: system, User: user}
}
