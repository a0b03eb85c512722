package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/chzyer/readline"

	"github.com/keshon/commandeer/internal/core"
	"github.com/keshon/commandeer/internal/discord"
)

const helpText = `Lines are sent as chat messages. Console commands:
  /as <user-id>   speak as another fixture user
  /dm             toggle between the guild channel and a direct message
  /in <channel>   move to another fixture channel
  /whoami         show the current author and channel
  exit, quit      leave`

// Console is a terminal transport for a dispatcher. Messages are attributed
// to the fixture's author in the fixture's channel until switched.
type Console struct {
	fixture *Fixture
	state   *discordgo.State
	out     *Writer

	mu      sync.Mutex
	author  string
	channel string
	dm      bool
	seq     int
}

func New(f *Fixture, out io.Writer) (*Console, error) {
	st, err := f.State()
	if err != nil {
		return nil, err
	}
	return &Console{
		fixture: f,
		state:   st,
		out:     &Writer{w: out, state: st},
		author:  f.Author,
		channel: f.Channel,
	}, nil
}

func (c *Console) BotID() string { return c.fixture.Bot.ID }

func (c *Console) Directory() *discord.Directory { return discord.NewStateDirectory(c.state) }

func (c *Console) Permissions() *discord.Permissions { return discord.NewStatePermissions(c.state) }

func (c *Console) Messenger() *Writer { return c.out }

// Handle runs one input line. Console commands are consumed; anything else is
// dispatched as a message.
func (c *Console) Handle(ctx context.Context, d *core.Dispatcher, line string) (core.Result, bool) {
	if c.control(strings.TrimSpace(line)) {
		return core.Result{}, false
	}
	return d.Dispatch(ctx, c.message(line)), true
}

func (c *Console) message(content string) core.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++

	msg := core.Message{
		ID:        strconv.Itoa(c.seq),
		AuthorID:  c.author,
		ChannelID: c.channel,
		Content:   content,
	}
	if u := c.fixture.user(c.author); u != nil {
		msg.AuthorBot = u.Bot
	}
	if c.dm {
		msg.ChannelID = DMChannelID
	} else {
		msg.GuildID = c.fixture.Guild.ID
	}
	return msg
}

func (c *Console) control(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	switch fields[0] {
	case "/help":
		c.out.Println(helpText)
	case "/as":
		if len(fields) < 2 || c.fixture.user(fields[1]) == nil {
			c.out.Println("unknown user")
			return true
		}
		c.author = fields[1]
		c.out.Printf("now speaking as %s\n", c.author)
	case "/dm":
		c.dm = !c.dm
		c.out.Printf("dm mode: %v\n", c.dm)
	case "/in":
		if len(fields) < 2 {
			c.out.Println("usage: /in <channel-id>")
			return true
		}
		if _, err := c.state.Channel(fields[1]); err != nil {
			c.out.Println("unknown channel")
			return true
		}
		c.channel, c.dm = fields[1], false
	case "/whoami":
		where := "#" + c.out.channelName(c.channel)
		if c.dm {
			where = "DM"
		}
		c.out.Printf("%s in %s\n", c.author, where)
	default:
		return false
	}
	return true
}

// Run reads lines until EOF, interrupt or exit and dispatches each one.
func (c *Console) Run(ctx context.Context, d *core.Dispatcher) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     filepath.Join(os.TempDir(), ".commandeer_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	c.out.Println("Type /help for console commands.")
	for ctx.Err() == nil {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			return nil
		}
		res, dispatched := c.Handle(ctx, d, line)
		if dispatched && res.Outcome != core.OutcomeExecuted && res.Outcome != core.OutcomePrefixInfo {
			c.out.Printf("(%s)\n", res.Outcome)
		}
	}
	return nil
}

// Writer is a Messenger that prints messages with their channel name.
type Writer struct {
	mu    sync.Mutex
	w     io.Writer
	state *discordgo.State
}

func (w *Writer) Send(_ context.Context, channelID, content string) error {
	name := "DM"
	if channelID != DMChannelID {
		name = "#" + w.channelName(channelID)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := fmt.Fprintf(w.w, "[%s] %s\n", name, content)
	return err
}

func (w *Writer) Println(a ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.w, a...)
}

func (w *Writer) Printf(format string, a ...any) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.w, format, a...)
}

func (w *Writer) channelName(id string) string {
	if ch, err := w.state.Channel(id); err == nil && ch.Name != "" {
		return ch.Name
	}
	return id
}
