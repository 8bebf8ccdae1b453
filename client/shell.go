package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/DeafMist/news-scraper/internal/aggregator"
	"github.com/DeafMist/news-scraper/internal/searchclient"
	"github.com/DeafMist/news-scraper/internal/session"
)

const helpText = `Commands:
  search <k1, k2, ...>   fetch news for the keywords
  add <domain>           allow a source domain
  remove <domain>        drop a source domain
  domains                list allowed domains
  sort                   toggle newest/oldest first
  tab <keyword|All>      show results for one keyword
  show                   print the current results
  help                   show this help
  quit                   exit`

type shell struct {
	sess    *session.Session
	out     io.Writer
	timeout time.Duration
}

// run reads commands line by line until quit, EOF or ctx is done.
func (s *shell) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(s.out, titleStyle.Render("News search")+"  "+dimStyle.Render("type help for commands"))

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, promptStyle.Render("> "))
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		if quit := s.execute(ctx, scanner.Text()); quit {
			return nil
		}
	}
}

// execute handles one command line and reports whether the shell should exit.
func (s *shell) execute(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "":
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(s.out, helpText)
	case "search":
		s.search(ctx, arg)
	case "add":
		if arg == "" {
			s.fail("usage: add <domain>")
		} else if s.sess.AddDomain(arg) {
			s.info("added " + arg)
		} else {
			s.info(arg + " is already allowed")
		}
	case "remove", "rm":
		if arg == "" {
			s.fail("usage: remove <domain>")
		} else if s.sess.RemoveDomain(arg) {
			s.info("removed " + arg)
		} else {
			s.info(arg + " is not in the list")
		}
	case "domains":
		fmt.Fprintln(s.out, renderDomains(s.sess.Domains()))
	case "sort":
		s.sess.ToggleSort()
		fmt.Fprint(s.out, renderView(s.sess))
	case "tab":
		if arg == "" {
			arg = aggregator.All
		}
		if !s.sess.SelectKeyword(arg) {
			s.fail(fmt.Sprintf("no tab named %q", arg))
			return false
		}
		fmt.Fprint(s.out, renderView(s.sess))
	case "show":
		fmt.Fprint(s.out, renderView(s.sess))
	default:
		s.fail(fmt.Sprintf("unknown command %q, type help", name))
	}
	return false
}

func (s *shell) search(ctx context.Context, raw string) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	fmt.Fprintln(s.out, dimStyle.Render("Loading..."))
	if err := s.sess.Search(ctx, raw); err != nil {
		s.fail(searchFailure(err))
		return
	}
	fmt.Fprint(s.out, renderView(s.sess))
}

func (s *shell) info(msg string) { fmt.Fprintln(s.out, dimStyle.Render(msg)) }
func (s *shell) fail(msg string) { fmt.Fprintln(s.out, errorStyle.Render(msg)) }

// searchFailure turns a search error into the message shown to the user.
func searchFailure(err error) string {
	switch {
	case errors.Is(err, session.ErrNoKeywords):
		return "enter at least one keyword"
	case errors.Is(err, searchclient.ErrUnavailable):
		return "cannot reach backend, is the API running?"
	default:
		return "failed to fetch news"
	}
}
