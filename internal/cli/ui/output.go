package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/comigor/emotune/internal/catalog"
	"github.com/comigor/emotune/internal/controller"
)

// Out receives everything the CLI prints.
var Out io.Writer = os.Stdout

var (
	// Color definitions for terminal output
	successColor   = color.New(color.FgGreen, color.Bold)
	errorColor     = color.New(color.FgRed, color.Bold)
	warningColor   = color.New(color.FgYellow, color.Bold)
	infoColor      = color.New(color.FgCyan)
	boldColor      = color.New(color.Bold)
	assistantColor = color.New(color.FgMagenta, color.Bold)
)

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...any) {
	successColor.Fprintf(Out, "✓ %s\n", fmt.Sprintf(format, args...))
}

// PrintError prints an error message
func PrintError(format string, args ...any) {
	errorColor.Fprintf(Out, "✗ %s\n", fmt.Sprintf(format, args...))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...any) {
	warningColor.Fprintf(Out, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...any) {
	infoColor.Fprintf(Out, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// PrintBold prints a bold message
func PrintBold(format string, args ...any) {
	boldColor.Fprintln(Out, fmt.Sprintf(format, args...))
}

// PrintAssistant prints one assistant turn.
func PrintAssistant(text string) {
	assistantColor.Fprint(Out, "GPT : ")
	fmt.Fprintln(Out, text)
}

// PrintBanner prints the welcome banner for chat mode
func PrintBanner() {
	title := Styles.Bold.Render("🎵  감정 기반 음악 추천 챗봇")
	sub := "당신의 이야기를 들려주세요. 감정에 맞는 음악을 추천해드립니다."
	fmt.Fprintln(Out, Styles.Banner.Render(title+"\n\n"+sub))
}

// PrintOutcome renders the analysis result and at most limit songs.
func PrintOutcome(userName string, o *controller.Outcome, limit int) {
	if o == nil || !o.Classified {
		PrintWarning("감정을 분석하지 못했습니다. 잠시 후 다시 시도해 주세요.")
		return
	}
	if userName == "" {
		userName = "User"
	}
	PrintSuccess("%s's emotion : %s", userName, o.Label)

	if len(o.Songs) == 0 {
		PrintWarning("추천할 노래를 찾지 못했습니다.")
		return
	}
	PrintBold("🎧 추천 재생목록 (%s)", o.Label)
	PrintSongs(o.Songs, limit)
}

// PrintSongs prints RenderSongs output.
func PrintSongs(songs []catalog.Entry, limit int) {
	fmt.Fprintln(Out, RenderSongs(songs, limit))
}

// RenderSongs lays out up to limit songs (all when limit <= 0) in a card.
func RenderSongs(songs []catalog.Entry, limit int) string {
	if limit > 0 && len(songs) > limit {
		songs = songs[:limit]
	}
	lines := make([]string, 0, len(songs))
	for i, s := range songs {
		lines = append(lines, fmt.Sprintf("%s\n   🎤 %s  %s",
			Styles.SongTitle.Render(fmt.Sprintf("%d. %s", i+1, s.Title)),
			s.Performer,
			Styles.Genre.Render("#"+s.Genre)))
	}
	return Styles.SongCard.Render(strings.Join(lines, "\n"))
}
