package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"asfalto/internal/models"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#111827")
	colorAccent  = lipgloss.Color("#DB2777")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	titleStyle   = lipgloss.NewStyle().Bold(true)
	badgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(colorAccent).Padding(0, 1)
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorPrimary).Padding(0, 1)
)

func Success(format string, args ...interface{}) {
	fmt.Print(successStyle.Render("✓ "))
	fmt.Printf(format+"\n", args...)
}

func Warning(format string, args ...interface{}) {
	fmt.Print(warningStyle.Render("⚠ "))
	fmt.Printf(format+"\n", args...)
}

func Error(format string, args ...interface{}) {
	fmt.Print(errorStyle.Render("✗ "))
	fmt.Printf(format+"\n", args...)
}

func Info(format string, args ...interface{}) {
	fmt.Print(infoStyle.Render("ℹ "))
	fmt.Printf(format+"\n", args...)
}

func Muted(format string, args ...interface{}) {
	fmt.Println(mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Section prints a header with an underline of the same width.
func Section(title string) {
	fmt.Println()
	fmt.Println(titleStyle.Render(title))
	fmt.Println(mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
}

func stamp(millis int64) string {
	return time.UnixMilli(millis).Format("2006-01-02 15:04")
}

// Posts prints one card per post.
func Posts(posts []models.Post) {
	if len(posts) == 0 {
		Muted("no posts")
		return
	}
	for _, p := range posts {
		var b strings.Builder
		b.WriteString(badgeStyle.Render(p.Category.String()) + " " + titleStyle.Render(p.Title) + "\n")
		b.WriteString(p.Summary + "\n")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%s · %s · ♥ %d · %s", p.AuthorName, stamp(p.PublishedAt), p.Likes, p.ID)))
		fmt.Println(cardStyle.Render(b.String()))
	}
}

// Post prints a post with its full content. display resolves the image reference.
func Post(p models.Post, display func(string) string) {
	Section(p.Title)
	fmt.Println(badgeStyle.Render(p.Category.String()))
	fmt.Println(p.Content)
	Muted("%s <%s> · %s · ♥ %d", p.AuthorName, p.AuthorEmail, stamp(p.PublishedAt), p.Likes)
	if p.ImageURL != nil {
		Muted("image: %s", display(*p.ImageURL))
	}
}

func Comments(comments []models.Comment) {
	if len(comments) == 0 {
		Muted("no comments")
		return
	}
	for _, c := range comments {
		fmt.Printf("%s %s\n", titleStyle.Render(c.AuthorName), mutedStyle.Render(stamp(c.Timestamp)+" · "+c.ID))
		fmt.Println("  " + c.Content)
	}
}

func Likes(likes []models.Like) {
	if len(likes) == 0 {
		Muted("no likes")
		return
	}
	for _, l := range likes {
		fmt.Printf("♥ %s %s\n", l.UserName, mutedStyle.Render("<"+l.UserEmail+"> "+stamp(l.Timestamp)))
	}
}

func User(u *models.User, display func(string) string) {
	role := "user"
	if u.IsAdmin {
		role = "admin"
	}
	fmt.Printf("%s %s\n", titleStyle.Render(u.Name), badgeStyle.Render(role))
	Muted("%s · %s", u.Email, u.Phone)
	if u.ProfileImagePath != nil {
		Muted("avatar: %s", display(*u.ProfileImagePath))
	}
}
