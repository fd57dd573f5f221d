package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	api "github.com/vx6Fid/envelopr/api/envelopr/v1"
	"github.com/vx6Fid/envelopr/internal/convert"
)

// need exits with usage help when any of the named flags is empty.
func need(fs *flag.FlagSet, vals map[string]string) {
	for name, v := range vals {
		if v == "" {
			fmt.Fprintf(os.Stderr, "%s: -%s is required\n", fs.Name(), name)
			fs.Usage()
			os.Exit(2)
		}
	}
}

// cmdAuth registers or logs in and stores the session.
func cmdAuth(args []string, g globals, register bool) {
	name := "login"
	if register {
		name = "register"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	u := fs.String("u", "", "username")
	p := fs.String("p", "", "password (prompted when omitted)")
	_ = fs.Parse(args)
	need(fs, map[string]string{"u": *u})

	pass := *p
	if pass == "" {
		var err error
		if pass, err = readPassword("password: "); err != nil {
			fail(err)
		}
	}

	ctx, cancel := withTimeout()
	defer cancel()
	c := g.anonymous(ctx)
	defer c.Close()

	call := c.Login
	if register {
		call = c.Register
	}
	resp, err := call(ctx, *u, pass)
	if err != nil {
		fail(err)
	}
	if err := saveToken(resp.Session, resp.User.Username); err != nil {
		fail(err)
	}
	fmt.Printf("logged in as %s until %s\n", resp.User.Username, resp.Session.ExpiresAt.Local().Format(time.RFC3339))
}

func cmdRefresh(g globals) {
	ctx, cancel := withTimeout()
	defer cancel()
	c := g.authed(ctx)
	defer c.Close()

	resp, err := c.Refresh(ctx)
	if err != nil {
		fail(err)
	}
	if err := saveToken(resp.Session, resp.User.Username); err != nil {
		fail(err)
	}
	fmt.Println("ok")
}

type fileRow struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Public  bool   `json:"public"`
	Created string `json:"created"`
	Updated string `json:"updated"`
}

// rows validates a listing and renders it for printing.
func rows(files []api.File) ([]fileRow, error) {
	out := make([]fileRow, 0, len(files))
	for _, w := range files {
		f, err := convert.FromFile(w)
		if err != nil {
			return nil, err
		}
		out = append(out, fileRow{
			ID:      f.ID.String(),
			Name:    f.Name,
			Public:  f.IsPublic,
			Created: tsString(f.CreatedAt),
			Updated: tsString(f.UpdatedAt),
		})
	}
	return out, nil
}

func tsString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func cmdList(args []string, g globals, shared bool) {
	fs := flag.NewFlagSet("ls", flag.ExitOnError)
	sortBy := fs.String("sort", api.SortByCreated, "created|name")
	asc := fs.Bool("asc", false, "ascending order")
	_ = fs.Parse(args)

	ctx, cancel := withTimeout()
	defer cancel()
	c := g.authed(ctx)
	defer c.Close()

	list := c.ListOwned
	if shared {
		list = c.ListShared
	}
	files, err := list(ctx, *sortBy, *asc)
	if err != nil {
		fail(err)
	}
	out, err := rows(files)
	if err != nil {
		fail(err)
	}
	printJSON(out)
}

// cmdGet prints the content of a file, or its metadata and grantees when
// info is set.
func cmdGet(args []string, g globals, info bool) {
	fs := flag.NewFlagSet("cat", flag.ExitOnError)
	id := fs.String("id", "", "file id")
	_ = fs.Parse(args)
	need(fs, map[string]string{"id": *id})

	ctx, cancel := withTimeout()
	defer cancel()
	c := g.authed(ctx)
	defer c.Close()

	f, err := c.Get(ctx, *id)
	if err != nil {
		fail(err)
	}
	if info {
		f.Content = ""
		printJSON(f)
		return
	}
	fmt.Print(f.Content)
}

func cmdPublic(args []string, g globals) {
	fs := flag.NewFlagSet("public", flag.ExitOnError)
	id := fs.String("id", "", "file id")
	_ = fs.Parse(args)
	need(fs, map[string]string{"id": *id})

	ctx, cancel := withTimeout()
	defer cancel()
	c := g.anonymous(ctx)
	defer c.Close()

	f, err := c.GetPublic(ctx, *id)
	if err != nil {
		fail(err)
	}
	fmt.Print(f.Content)
}

func cmdCreate(args []string, g globals) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	name := fs.String("name", "", "file name")
	file := fs.String("file", "", "initial content from path, - for stdin")
	_ = fs.Parse(args)
	need(fs, map[string]string{"name": *name})

	var content []byte
	if *file != "" {
		var err error
		if content, err = readAll(*file); err != nil {
			fail(err)
		}
	}

	ctx, cancel := withTimeout()
	defer cancel()
	c := g.authed(ctx)
	defer c.Close()

	f, err := c.Create(ctx, *name, string(content))
	if err != nil {
		fail(err)
	}
	fmt.Println(f.ID)
}

func cmdRename(args []string, g globals) {
	fs := flag.NewFlagSet("rename", flag.ExitOnError)
	id := fs.String("id", "", "file id")
	name := fs.String("name", "", "new name")
	_ = fs.Parse(args)
	need(fs, map[string]string{"id": *id, "name": *name})

	ctx, cancel := withTimeout()
	defer cancel()
	c := g.authed(ctx)
	defer c.Close()

	if _, err := c.Rename(ctx, *id, *name); err != nil {
		fail(err)
	}
	fmt.Println("ok")
}

// cmdWrite replaces the whole content of a file.
func cmdWrite(args []string, g globals) {
	fs := flag.NewFlagSet("write", flag.ExitOnError)
	id := fs.String("id", "", "file id")
	file := fs.String("file", "", "content from path, - for stdin")
	_ = fs.Parse(args)
	need(fs, map[string]string{"id": *id, "file": *file})

	content, err := readAll(*file)
	if err != nil {
		fail(err)
	}

	ctx, cancel := withTimeout()
	defer cancel()
	c := g.authed(ctx)
	defer c.Close()

	if _, err := c.Write(ctx, *id, string(content)); err != nil {
		fail(err)
	}
	fmt.Println("ok")
}

func cmdRemove(args []string, g globals) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	id := fs.String("id", "", "file id")
	_ = fs.Parse(args)
	need(fs, map[string]string{"id": *id})

	ctx, cancel := withTimeout()
	defer cancel()
	c := g.authed(ctx)
	defer c.Close()

	if err := c.Delete(ctx, *id); err != nil {
		fail(err)
	}
	fmt.Println("ok")
}

func cmdVisibility(args []string, g globals, public bool) {
	fs := flag.NewFlagSet("publish", flag.ExitOnError)
	id := fs.String("id", "", "file id")
	_ = fs.Parse(args)
	need(fs, map[string]string{"id": *id})

	ctx, cancel := withTimeout()
	defer cancel()
	c := g.authed(ctx)
	defer c.Close()

	set := c.Unpublish
	if public {
		set = c.Publish
	}
	f, err := set(ctx, *id)
	if err != nil {
		fail(err)
	}
	fmt.Printf("public=%t\n", f.IsPublic)
}

func cmdShare(args []string, g globals, grant bool) {
	fs := flag.NewFlagSet("share", flag.ExitOnError)
	id := fs.String("id", "", "file id")
	u := fs.String("u", "", "username")
	_ = fs.Parse(args)
	need(fs, map[string]string{"id": *id, "u": *u})

	ctx, cancel := withTimeout()
	defer cancel()
	c := g.authed(ctx)
	defer c.Close()

	op := c.Unshare
	if grant {
		op = c.Share
	}
	if err := op(ctx, *id, *u); err != nil {
		fail(err)
	}
	fmt.Println("ok")
}

func cmdUsers(args []string, g globals) {
	fs := flag.NewFlagSet("users", flag.ExitOnError)
	id := fs.String("id", "", "file id")
	_ = fs.Parse(args)
	need(fs, map[string]string{"id": *id})

	ctx, cancel := withTimeout()
	defer cancel()
	c := g.authed(ctx)
	defer c.Close()

	users, err := c.SharedUsers(ctx, *id)
	if err != nil {
		fail(err)
	}
	for _, u := range users {
		fmt.Println(u.Username)
	}
}
