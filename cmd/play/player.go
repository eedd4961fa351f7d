package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/text/language"

	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/export"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/game"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/i18n"
	"github.com/EimisPacheco/Legendary-Lines-Challenge-Game/internal/ledger"
)

// leaderboardSize matches what the web client shows.
const leaderboardSize = 5

// player drives one Machine from line-based input.
type player struct {
	m        *game.Machine
	tag      language.Tag
	out      io.Writer
	board    ledger.Ledger
	gameType string
	exporter *export.Exporter
	sleep    func(context.Context, time.Duration)
}

func (p *player) play(ctx context.Context, in io.Reader) error {
	u := p.m.Greet()
	p.render(u)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprintf(p.out, "%s\n> ", i18n.Prompt(p.tag, u.Prompt))
		if !sc.Scan() {
			fmt.Fprintln(p.out)
			return sc.Err()
		}
		line := sc.Text()
		if cmd := strings.ToLower(strings.TrimSpace(line)); cmd == "quit" || cmd == "exit" {
			return nil
		}

		next, err := p.m.SubmitInput(ctx, line)
		if errors.Is(err, game.ErrCompleted) {
			return nil
		}
		if err != nil {
			return err
		}
		u = next
		p.render(u)

		for u.Session.Phase == game.PhaseRoundResolved {
			p.sleep(ctx, u.AdvanceAfter)
			if ctx.Err() != nil {
				return nil
			}
			if u, err = p.m.AdvanceRound(ctx); err != nil {
				return err
			}
			p.render(u)
		}
		if u.Session.Phase == game.PhaseCompleted {
			p.finish(ctx, u.Session)
			return nil
		}
	}
}

func (p *player) render(u game.Update) {
	for _, n := range u.Notices {
		fmt.Fprintln(p.out, i18n.Render(p.tag, n))
	}
	if u.Celebrate {
		fmt.Fprintln(p.out, "*  *  *  *  *  *  *  *")
	}
	if s := u.Session; s.Phase.Open() || s.Phase == game.PhaseRoundResolved {
		fmt.Fprintf(p.out, "[round %d/%d | score %d | streak %d]\n", s.RoundIndex, s.Settings.TotalRounds, s.TotalScore, s.Streak)
	}
}

func (p *player) finish(ctx context.Context, s game.Session) {
	if p.exporter != nil {
		if err := p.exporter.ExportSession(s); err != nil {
			fmt.Fprintf(p.out, "export failed: %v\n", err)
		}
	}
	if p.board == nil {
		return
	}
	recs, err := p.board.Top(ctx, p.gameType, leaderboardSize)
	if err != nil {
		fmt.Fprintf(p.out, "leaderboard unavailable: %v\n", err)
		return
	}
	fmt.Fprintln(p.out)
	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPLAYER\tSCORE\tDATE")
	for i, r := range recs {
		fmt.Fprintf(tw, "%d\t%s\t%d/%d\t%s\n", i+1, r.Nickname, r.Score, r.MaxPossible, r.CreatedAt.Local().Format("2006-01-02"))
	}
	tw.Flush()
}
