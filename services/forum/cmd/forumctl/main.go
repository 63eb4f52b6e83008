package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/example/learnhub/services/forum/internal/client"
	"github.com/example/learnhub/services/forum/internal/forum"
	"github.com/example/learnhub/services/forum/internal/persistence"
	"github.com/example/learnhub/services/forum/internal/persistence/kv"
)

const usage = `usage: forumctl <command> [flags]

commands against a running forum service (-addr, default $FORUM_ADDR):
  list                             print all posts
  stats                            print forest statistics
  create -title T [-content C]     create a post
  upvote|downvote -post P          vote on a post
  comment -post P -text T          add a top-level comment
  reply -post P -parent C -text T  reply to a comment or reply
  vote-comment -post P -comment C -vote up|down

commands against the storage slot directly (-dsn, -key):
  export [-out FILE]               write the stored forest as JSON
  import -in FILE                  validate and overwrite the stored forest
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	var err error
	switch cmd {
	case "list":
		err = listCmd(args)
	case "stats":
		err = statsCmd(args)
	case "create":
		err = createCmd(args)
	case "upvote", "downvote":
		err = votePostCmd(cmd, args)
	case "comment":
		err = commentCmd(args)
	case "reply":
		err = replyCmd(args)
	case "vote-comment":
		err = voteCommentCmd(args)
	case "export":
		err = exportCmd(args)
	case "import":
		err = importCmd(args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type apiFlags struct {
	addr    *string
	timeout *time.Duration
}

func newAPIFlags(name string) (*flag.FlagSet, apiFlags) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	def := strings.TrimSpace(os.Getenv("FORUM_ADDR"))
	if def == "" {
		def = client.DefaultBaseURL
	}
	return fs, apiFlags{
		addr:    fs.String("addr", def, "forum service base URL"),
		timeout: fs.Duration("timeout", 10*time.Second, "request timeout"),
	}
}

func (f apiFlags) client() *client.Client {
	return client.New(client.Config{BaseURL: *f.addr, Timeout: *f.timeout})
}

func required(name, v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("missing -%s", name)
	}
	return nil
}

func listCmd(args []string) error {
	fs, af := newAPIFlags("list")
	_ = fs.Parse(args)
	c := af.client()
	defer c.Close()

	posts, err := c.ListPosts(context.Background())
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, posts)
}

func statsCmd(args []string) error {
	fs, af := newAPIFlags("stats")
	_ = fs.Parse(args)
	c := af.client()
	defer c.Close()

	st, err := c.Stats(context.Background())
	if err != nil {
		return err
	}
	return printJSON(os.Stdout, st)
}

func createCmd(args []string) error {
	fs, af := newAPIFlags("create")
	title := fs.String("title", "", "post title")
	content := fs.String("content", "", "post body")
	_ = fs.Parse(args)
	if err := required("title", *title); err != nil {
		return err
	}
	c := af.client()
	defer c.Close()

	res, err := c.CreatePost(context.Background(), *title, *content)
	return printResult(res, err)
}

func votePostCmd(verb string, args []string) error {
	fs, af := newAPIFlags(verb)
	post := fs.String("post", "", "post id")
	_ = fs.Parse(args)
	if err := required("post", *post); err != nil {
		return err
	}
	v, _ := forum.ParseVote(verb)
	c := af.client()
	defer c.Close()

	res, err := c.VotePost(context.Background(), *post, v)
	return printResult(res, err)
}

func commentCmd(args []string) error {
	fs, af := newAPIFlags("comment")
	post := fs.String("post", "", "post id")
	text := fs.String("text", "", "comment text")
	_ = fs.Parse(args)
	if err := errors.Join(required("post", *post), required("text", *text)); err != nil {
		return err
	}
	c := af.client()
	defer c.Close()

	res, err := c.AddComment(context.Background(), *post, *text)
	return printResult(res, err)
}

func replyCmd(args []string) error {
	fs, af := newAPIFlags("reply")
	post := fs.String("post", "", "post id")
	parent := fs.String("parent", "", "comment or reply id to answer")
	text := fs.String("text", "", "reply text")
	_ = fs.Parse(args)
	if err := errors.Join(required("post", *post), required("parent", *parent), required("text", *text)); err != nil {
		return err
	}
	c := af.client()
	defer c.Close()

	res, err := c.AddReply(context.Background(), *post, *parent, *text)
	return printResult(res, err)
}

func voteCommentCmd(args []string) error {
	fs, af := newAPIFlags("vote-comment")
	post := fs.String("post", "", "post id")
	comment := fs.String("comment", "", "comment or reply id")
	vote := fs.String("vote", "up", "up or down")
	_ = fs.Parse(args)
	if err := errors.Join(required("post", *post), required("comment", *comment)); err != nil {
		return err
	}
	v, ok := forum.ParseVote(*vote)
	if !ok {
		return fmt.Errorf("bad -vote %q", *vote)
	}
	c := af.client()
	defer c.Close()

	res, err := c.VoteComment(context.Background(), *post, *comment, v)
	return printResult(res, err)
}

func slotFlags(name string) (*flag.FlagSet, *string, *string) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	dsn := fs.String("dsn", os.Getenv("FORUM_STORE_DSN"), "storage DSN (file:, sqlite:, postgres:, redis:, nats:, mongodb:)")
	key := fs.String("key", persistence.DefaultKey, "storage key")
	return fs, dsn, key
}

func openAdapter(ctx context.Context, dsn string, opts persistence.Options) (*persistence.Adapter, error) {
	if err := required("dsn", dsn); err != nil {
		return nil, err
	}
	slot, err := kv.Open(ctx, dsn, false)
	if err != nil {
		return nil, err
	}
	return persistence.New(slot, opts), nil
}

func exportCmd(args []string) error {
	fs, dsn, key := slotFlags("export")
	out := fs.String("out", "", "output file (default stdout)")
	_ = fs.Parse(args)

	ctx := context.Background()
	a, err := openAdapter(ctx, *dsn, persistence.Options{Key: *key})
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := a.Load(ctx)
	if err != nil {
		return err
	}
	if *out == "" {
		return printJSON(os.Stdout, f)
	}
	file, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := printJSON(file, f); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func importCmd(args []string) error {
	fs, dsn, key := slotFlags("import")
	in := fs.String("in", "", "JSON file holding a forest")
	compress := fs.String("compress", "none", "none or zstd")
	_ = fs.Parse(args)
	if err := required("in", *in); err != nil {
		return err
	}

	blob, err := os.ReadFile(*in)
	if err != nil {
		return err
	}
	codec := &persistence.Codec{}
	f, err := codec.Decode(blob)
	if err != nil {
		return fmt.Errorf("%s: %w", *in, err)
	}

	ctx := context.Background()
	a, err := openAdapter(ctx, *dsn, persistence.Options{Key: *key, Compression: persistence.ParseCompression(*compress)})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.Save(ctx, f); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "imported %d posts into %s\n", len(f), *key)
	return nil
}

func printResult(res *client.MutationResult, err error) error {
	if err != nil {
		return err
	}
	if !res.Found {
		fmt.Fprintln(os.Stderr, "target not found; nothing changed")
	}
	return printJSON(os.Stdout, res)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
