package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vx6Fid/envelopr/internal/autosave"
)

// lockedWriter serializes writes from the autosave status callback and the
// editor loop.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func statusPrinter(w io.Writer) func(autosave.Status, error) {
	return func(s autosave.Status, err error) {
		if err != nil {
			fmt.Fprintf(w, "[%s: %v]\n", s, err)
			return
		}
		fmt.Fprintf(w, "[%s]\n", s)
	}
}

// buffer is the line-oriented document being edited.
type buffer struct{ lines []string }

func newBuffer(content string) *buffer {
	if content == "" {
		return &buffer{}
	}
	return &buffer{lines: strings.Split(strings.TrimSuffix(content, "\n"), "\n")}
}

func (b *buffer) String() string {
	if len(b.lines) == 0 {
		return ""
	}
	return strings.Join(b.lines, "\n") + "\n"
}

// runEditor feeds lines from in to co until EOF, ":q" or ctx is done, then
// closes co. Lines starting with ':' are commands:
//
//	:w  save now    :p  print buffer    :d  drop last line    :q  quit
func runEditor(ctx context.Context, co *autosave.Coordinator, in io.Reader, out io.Writer) error {
	buf := newBuffer(co.Content())
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	closeCtx := context.WithoutCancel(ctx)
	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return co.Close(closeCtx)
		case line, ok = <-lines:
		}
		if !ok {
			return co.Close(closeCtx)
		}
		switch line {
		case ":q":
			return co.Close(closeCtx)
		case ":w":
			if err := co.Flush(ctx); err != nil {
				fmt.Fprintf(out, "save failed: %v\n", err)
			}
			continue
		case ":p":
			fmt.Fprint(out, buf.String())
			continue
		case ":d":
			if n := len(buf.lines); n > 0 {
				buf.lines = buf.lines[:n-1]
			}
		default:
			buf.lines = append(buf.lines, line)
		}
		co.Edit(buf.String())
	}
}

// cmdEdit opens an autosaving line editor on a file the caller can edit.
func cmdEdit(args []string, g globals) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	id := fs.String("id", "", "file id")
	debounce := fs.Duration("debounce", autosave.DefaultDebounce, "autosave delay after the last edit")
	_ = fs.Parse(args)
	need(fs, map[string]string{"id": *id})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := g.authed(ctx)
	defer c.Close()

	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	f, err := c.Get(loadCtx, *id)
	cancel()
	if err != nil {
		fail(err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fail(err)
	}
	defer func() { _ = logger.Sync() }()

	stderr := &lockedWriter{w: os.Stderr}
	co := autosave.New(f.Content, c.Committer(f.ID), autosave.Options{
		Debounce: *debounce,
		Log:      logger.Named("autosave"),
		OnStatus: statusPrinter(stderr),
	})

	fmt.Fprintf(stderr, "editing %s (:w save, :p print, :d drop line, :q quit)\n", f.Name)
	fmt.Fprint(os.Stdout, f.Content)
	if err := runEditor(ctx, co, os.Stdin, stderr); err != nil {
		fail(err)
	}
}
