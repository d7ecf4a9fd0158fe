package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// feedCap bounds how many rows the live feed keeps.
const feedCap = 200

// TransferRow is one Transfer event as the feed shows it.
type TransferRow struct {
	Hash     string // full tx hash
	From     string
	To       string
	Amount   string // already scaled by the token decimals
	Symbol   string
	Block    uint64
	Link     string // explorer URL, empty when the network has none
	Incoming bool   // To is the watched receiver
}

// TransferLine renders r as one plain narration line, used for history and for
// the live feed when stdout is not a terminal.
func TransferLine(r TransferRow) string {
	dir := StyleWarning.Render("→")
	if r.Incoming {
		dir = StyleSuccess.Render("←")
	}
	line := fmt.Sprintf("%s %s  %s %s %s  %s",
		StyleMeta.Render(fmt.Sprintf("#%d", r.Block)),
		dir,
		Addr(r.From), StyleDim.Render("→"), Addr(r.To),
		Val(r.Amount)+" "+StyleDim.Render(r.Symbol))
	if r.Link != "" {
		line += "  " + StyleMeta.Render(r.Link)
	} else if r.Hash != "" {
		line += "  " + StyleMeta.Render(r.Hash)
	}
	return line
}

// feedStoppedMsg ends the feed, with the subscription error if any.
type feedStoppedMsg struct{ err error }

type feedTickMsg struct{}

func feedSpinTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return feedTickMsg{}
	})
}

// FeedModel is the Bubble Tea model for the live Transfer stream. Newest rows
// are on top.
type FeedModel struct {
	Title    string
	Rows     []TransferRow
	Err      error // subscription error that stopped the feed
	Quitting bool

	cursor int
	frame  int
	flash  string
}

// NewFeedModel returns an empty feed.
func NewFeedModel(title string) FeedModel {
	return FeedModel{Title: title}
}

func (m FeedModel) Init() tea.Cmd { return feedSpinTick() }

func (m FeedModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.flash = ""
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Quitting = true
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.Rows)-1 {
				m.cursor++
			}

		case "o":
			if m.cursor < len(m.Rows) {
				if url := m.Rows[m.cursor].Link; url == "" {
					m.flash = "No explorer URL for this network"
				} else if err := openBrowser(url); err != nil {
					m.flash = "Could not open browser"
				} else {
					m.flash = "Opening in browser…"
				}
			}

		case "c":
			if m.cursor < len(m.Rows) {
				hash := m.Rows[m.cursor].Hash
				if hash == "" {
					m.flash = "No hash available"
				} else if err := copyToClipboard(hash); err != nil {
					m.flash = "Copy failed"
				} else {
					m.flash = "Copied: " + TruncateAddr(hash)
				}
			}
		}

	case feedTickMsg:
		m.frame = (m.frame + 1) % len(spinnerFrames)
		return m, feedSpinTick()

	case TransferRow:
		m.Rows = append([]TransferRow{msg}, m.Rows...)
		if len(m.Rows) > feedCap {
			m.Rows = m.Rows[:feedCap]
		}
		if m.cursor > 0 {
			m.cursor = min(m.cursor+1, len(m.Rows)-1)
		}

	case feedStoppedMsg:
		m.Err = msg.err
		m.Quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m FeedModel) View() string {
	if m.Quitting {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(StyleTitle.Render(m.Title) + "\n")
	sb.WriteString(StyleInfo.Render(fmt.Sprintf("%s listening for Transfer events…", spinnerFrames[m.frame])) + "\n\n")

	const (
		wBlk  = 10
		wHash = 12
		wAddr = 12
		wVal  = 22
	)

	sb.WriteString(
		padR(StyleDim.Render("BLOCK"), wBlk) + "  " +
			padR(StyleDim.Render("TX"), wHash) + "  " +
			padR(StyleDim.Render("FROM"), wAddr) + "  " +
			padR(StyleDim.Render("TO"), wAddr) + "  " +
			StyleDim.Render("AMOUNT") + "\n")
	sep := StyleMeta.Render(strings.Repeat("─", wBlk+wHash+2*wAddr+wVal+8))
	sb.WriteString(sep + "\n")

	if len(m.Rows) == 0 {
		sb.WriteString(StyleMeta.Render("  Waiting for transfers…") + "\n")
	}
	for i, row := range m.Rows {
		to := StyleAddress.Render(TruncateAddr(row.To))
		if row.Incoming {
			to = StyleSuccess.Render(TruncateAddr(row.To))
		}
		line := padR(StyleMeta.Render(fmt.Sprintf("#%d", row.Block)), wBlk) + "  " +
			padR(StyleAddress.Render(TruncateAddr(row.Hash)), wHash) + "  " +
			padR(StyleAddress.Render(TruncateAddr(row.From)), wAddr) + "  " +
			padR(to, wAddr) + "  " +
			StyleValue.Render(row.Amount) + " " + StyleDim.Render(row.Symbol)

		if i == m.cursor {
			sb.WriteString(StyleSelected.Render(line) + "\n")
		} else {
			sb.WriteString(line + "\n")
		}
	}
	if len(m.Rows) > 0 {
		sb.WriteString(sep + "\n")
		sb.WriteString(StyleMeta.Render(fmt.Sprintf("  %d transfer(s) received", len(m.Rows))) + "\n")
	}

	sb.WriteString("\n")
	if m.flash != "" {
		sb.WriteString(StyleSuccess.Render("  ✓ " + m.flash))
	} else {
		sb.WriteString(feedControls())
	}
	sb.WriteString("\n")

	return sb.String()
}

func feedControls() string {
	sep := StyleMeta.Render("   ")
	return StyleMeta.Render("[ ↑↓ ] navigate") + sep +
		StyleInfo.Render("[ o ]") + StyleMeta.Render(" open in explorer") + sep +
		StyleWarning.Render("[ c ]") + StyleMeta.Render(" copy hash") + sep +
		StyleMeta.Render("[ q ] quit")
}

// RunFeed shows the live feed until the user quits, ctx is done, or stopped
// yields. rows and stopped are usually fed by a contract watch. A value
// received on stopped is returned as the error.
func RunFeed(ctx context.Context, title string, rows <-chan TransferRow, stopped <-chan error) error {
	p := tea.NewProgram(NewFeedModel(title), tea.WithContext(ctx))

	go func() {
		for {
			select {
			case r := <-rows:
				p.Send(r)
			case err := <-stopped:
				p.Send(feedStoppedMsg{err: err})
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	final, err := p.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("live feed: %w", err)
	}
	if fm, ok := final.(FeedModel); ok {
		return fm.Err
	}
	return nil
}
