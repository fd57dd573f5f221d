// Command envelopr is a CLI client for the envelopr file service.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/term"

	api "github.com/vx6Fid/envelopr/api/envelopr/v1"
	"github.com/vx6Fid/envelopr/internal/client"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	Username    string    `json:"username,omitempty"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "envelopr")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "envelopr")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(s api.Session, username string) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(tokenPath(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: s.Token, ExpiresAt: s.ExpiresAt, Username: username})
}

func loadToken() (tokenFile, error) {
	var tf tokenFile
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return tf, errors.New("not logged in (run login)")
	}
	if err := json.Unmarshal(b, &tf); err != nil {
		return tf, err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return tf, errors.New("session expired (run login)")
	}
	return tf, nil
}

func forgetToken() error {
	err := os.Remove(tokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ---- utils ----

func readAll(p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(p)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// readPassword prompts on stderr and reads without echo when stdin is a
// terminal. Replaced in tests.
var readPassword = func(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return string(b), err
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `envelopr CLI
Usage:
  envelopr -addr HOST:PORT [-cacert file | -insecure | -plaintext] <cmd> [args]

Commands:
  version
  register   -u <username> [-p <password>]       (saves token)
  login      -u <username> [-p <password>]       (saves token)
  logout
  refresh
  ls         [-sort created|name] [-asc]
  shared     [-sort created|name] [-asc]
  cat        -id <uuid>
  info       -id <uuid>
  public     -id <uuid>                          (no login needed)
  create     -name <name> [-file <path|->]
  rename     -id <uuid> -name <name>
  write      -id <uuid> -file <path|->
  rm         -id <uuid>
  publish    -id <uuid>
  unpublish  -id <uuid>
  share      -id <uuid> -u <username>
  unshare    -id <uuid> -u <username>
  users      -id <uuid>
  edit       -id <uuid> [-debounce 1s]            (autosaving line editor)
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// globals carries connection flags shared by every command.
type globals struct {
	addr      string
	caPath    string
	insecure  bool
	plaintext bool
}

func (g globals) connect(ctx context.Context, token string) (*client.Client, error) {
	return client.Dial(ctx, client.Options{
		Addr:       g.addr,
		CACert:     g.caPath,
		SkipVerify: g.insecure,
		Plaintext:  g.plaintext,
		Token:      token,
	})
}

// authed dials with the saved session or exits.
func (g globals) authed(ctx context.Context) *client.Client {
	tf, err := loadToken()
	if err != nil {
		fail(err)
	}
	c, err := g.connect(ctx, tf.AccessToken)
	if err != nil {
		fail(err)
	}
	return c
}

func (g globals) anonymous(ctx context.Context) *client.Client {
	c, err := g.connect(ctx, "")
	if err != nil {
		fail(err)
	}
	return c
}

// main dispatches subcommands and configures TLS/auth for RPC calls.
func main() {
	var g globals
	flag.StringVar(&g.addr, "addr", "localhost:8443", "server addr")
	flag.StringVar(&g.caPath, "cacert", "", "CA cert (PEM)")
	flag.BoolVar(&g.insecure, "insecure", false, "skip cert verify (dev)")
	flag.BoolVar(&g.plaintext, "plaintext", false, "no TLS (dev server without certificate)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd, args := flag.Arg(0), flag.Args()[1:]

	switch cmd {
	case "version":
		fmt.Printf("envelopr %s (%s)\n", version, buildDate)
	case "register":
		cmdAuth(args, g, true)
	case "login":
		cmdAuth(args, g, false)
	case "logout":
		if err := forgetToken(); err != nil {
			fail(err)
		}
		fmt.Println("ok")
	case "refresh":
		cmdRefresh(g)
	case "ls":
		cmdList(args, g, false)
	case "shared":
		cmdList(args, g, true)
	case "cat":
		cmdGet(args, g, false)
	case "info":
		cmdGet(args, g, true)
	case "public":
		cmdPublic(args, g)
	case "create":
		cmdCreate(args, g)
	case "rename":
		cmdRename(args, g)
	case "write":
		cmdWrite(args, g)
	case "rm":
		cmdRemove(args, g)
	case "publish":
		cmdVisibility(args, g, true)
	case "unpublish":
		cmdVisibility(args, g, false)
	case "share":
		cmdShare(args, g, true)
	case "unshare":
		cmdShare(args, g, false)
	case "users":
		cmdUsers(args, g)
	case "edit":
		cmdEdit(args, g)
	default:
		usage()
	}
}

func withTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", client.Describe(err))
	os.Exit(1)
}
