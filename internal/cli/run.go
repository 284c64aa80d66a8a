package cli

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// RunScript visits every URL read from in, one per line, and waits for each
// sequence before reading the next. Blank lines and lines starting with '#'
// are ignored. A failed navigation is reported on out and does not stop the script.
// It returns the number of failed navigations.
func (a *App) RunScript(ctx context.Context, in io.Reader, out io.Writer) (int, error) {
	failed := 0
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return failed, err
		}
		if !a.visitAndReport(ctx, line, out) {
			failed++
		}
	}
	return failed, scanner.Err()
}

// RunURLs is RunScript over an explicit list.
func (a *App) RunURLs(ctx context.Context, urls []string, out io.Writer) (int, error) {
	return a.RunScript(ctx, strings.NewReader(strings.Join(urls, "\n")), out)
}

func (a *App) visitAndReport(ctx context.Context, url string, out io.Writer) bool {
	printSystemMessage(out, "visit %s", url)
	if err := a.Visit(ctx, url); err != nil {
		a.Logger.Warn("visit failed", "url", url, "error", err)
		printSystemMessage(out, "%v", err)
		return false
	}
	printSystemMessage(out, "at '%s' (%s)", a.Router.Current(), a.Router.CurrentURL())
	return true
}
