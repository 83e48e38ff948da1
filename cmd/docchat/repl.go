package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/deon-gracias/rag/internal/chat"
	"github.com/deon-gracias/rag/internal/domain"
)

const replHelp = `commands:
  /details N      show model details of entry N
  /retry          resend the last failed message
  /attach FILE... add documents to this session
  /quit           leave
`

// chat opens a session and runs the question loop until /quit or EOF
func (a *app) chat(ctx context.Context, name string) error {
	conv, err := a.ws.Open(ctx, name)
	if err != nil {
		return err
	}

	a.out.success("Session", conv.Session().Name)
	a.out.transcript(conv.Transcript())

	scanner := bufio.NewScanner(a.in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Fprint(a.out.w, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(a.out.w)
			return scanner.Err()
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := a.command(ctx, conv, line)
			if err != nil {
				a.out.failure(describe(err))
			}
			if quit {
				return nil
			}
			continue
		}

		a.send(ctx, conv, func(sctx context.Context) (domain.Entry, error) {
			return conv.Send(sctx, line)
		})
	}
}

// send runs one delivery; Ctrl-C cancels it without leaving the loop
func (a *app) send(ctx context.Context, conv *chat.Controller, deliver func(context.Context) (domain.Entry, error)) {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	_, err := deliver(sctx)
	switch {
	case err == nil:
		entries := conv.Transcript()
		a.out.entry(len(entries), entries[len(entries)-1])
	case errors.Is(err, chat.ErrTooShort):
		a.out.warn(err.Error())
	case errors.Is(err, context.Canceled):
		a.out.warn("send cancelled, /retry to resend")
	default:
		a.out.failure(describe(err))
	}
}

func (a *app) command(ctx context.Context, conv *chat.Controller, line string) (bool, error) {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Fprint(a.out.w, replHelp)
	case "/retry":
		a.send(ctx, conv, conv.Retry)
	case "/details":
		if len(fields) != 2 {
			return false, errors.New("usage: /details N")
		}
		n, err := strconv.Atoi(fields[1])
		entries := conv.Transcript()
		if err != nil || n < 1 || n > len(entries) {
			return false, fmt.Errorf("no entry %q", fields[1])
		}
		e := entries[n-1]
		if !e.HasDetails() {
			return false, fmt.Errorf("entry %d has no details", n)
		}
		a.out.details(e)
	case "/attach":
		if len(fields) < 2 {
			return false, errors.New("usage: /attach FILE...")
		}
		return false, a.attach(ctx, conv.Session().Name, fields[1:])
	default:
		return false, fmt.Errorf("unknown command %s, try /help", fields[0])
	}
	return false, nil
}
