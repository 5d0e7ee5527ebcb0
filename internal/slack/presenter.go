package slack

import (
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"github.com/teemow/freeweek/internal/availability"
)

// weekdayLabels maps time.Weekday (Sunday = 0) to the Japanese single-glyph
// weekday names.
var weekdayLabels = [...]string{"日", "月", "火", "水", "木", "金", "土"}

// SearchingMessage is the immediate ephemeral acknowledgement sent before
// the slow calendar fetch runs in the background.
func SearchingMessage() slack.Msg {
	return slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         "空き時間を検索中...",
	}
}

// ErrorMessage is the ephemeral reply used when processing fails.
func ErrorMessage() slack.Msg {
	return slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Text:         "エラーが発生しました。もう一度お試しください。",
	}
}

// FreeSlotsMessage renders the computed free slots as an in-channel Block
// Kit message, one line per date. An empty slot list is rendered as an
// explicit "no availability" message rather than omitted output.
func FreeSlotsMessage(slots []availability.FreeSlot) slack.Msg {
	if len(slots) == 0 {
		return slack.Msg{
			ResponseType: slack.ResponseTypeInChannel,
			Blocks: slack.Blocks{BlockSet: []slack.Block{
				slack.NewSectionBlock(
					slack.NewTextBlockObject(slack.MarkdownType, "今週は空き時間が見つかりませんでした。", false, false),
					nil, nil),
			}},
		}
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, "全員の空き時間", true, false)),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, strings.Join(freeSlotLines(slots), "\n"), false, false),
			nil, nil),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, "ご都合いかがでしょうか？", false, false)),
		slack.NewDividerBlock(),
	}

	return slack.Msg{
		ResponseType: slack.ResponseTypeInChannel,
		Blocks:       slack.Blocks{BlockSet: blocks},
	}
}

// HelpMessage renders usage information as an ephemeral Block Kit message.
func HelpMessage() slack.Msg {
	blocks := []slack.Block{
		slack.NewHeaderBlock(
			slack.NewTextBlockObject(slack.PlainTextType, "空き時間検索Bot", true, false)),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				"チームメンバー全員のカレンダーから空き時間を検索してチャンネルに共有します。", false, false),
			nil, nil),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				"*使い方:*\n`/cal` - 今週の空き時間をチャンネルに共有\n`/cal help` - このヘルプを表示", false, false),
			nil, nil),
		slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType,
				"平日10:00-19:00の空き時間を検索します（土日除く）", false, false)),
		slack.NewDividerBlock(),
	}

	return slack.Msg{
		ResponseType: slack.ResponseTypeEphemeral,
		Blocks:       slack.Blocks{BlockSet: blocks},
	}
}

// freeSlotLines groups slots by date, preserving slot order, and renders
// one mrkdwn line per date: "*1/5(月)* 10:00-11:00, 14:00-19:00".
func freeSlotLines(slots []availability.FreeSlot) []string {
	var dates []string
	byDate := make(map[string][]availability.FreeSlot)
	for _, slot := range slots {
		if _, seen := byDate[slot.Date]; !seen {
			dates = append(dates, slot.Date)
		}
		byDate[slot.Date] = append(byDate[slot.Date], slot)
	}

	lines := make([]string, 0, len(dates))
	for _, date := range dates {
		times := make([]string, 0, len(byDate[date]))
		for _, slot := range byDate[date] {
			times = append(times, slot.String())
		}
		lines = append(lines, fmt.Sprintf("*%s* %s", dateLabel(date), strings.Join(times, ", ")))
	}
	return lines
}

// dateLabel renders "M/D(曜)" for a calendar-date string. An unparseable
// date is shown verbatim rather than dropped.
func dateLabel(date string) string {
	day, err := time.Parse(availability.DateLayout, date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%d/%d(%s)", int(day.Month()), day.Day(), weekdayLabels[day.Weekday()])
}
