package vote

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ratel-online/core/log"
	"github.com/masoi-online/server/consts"
)

// Option is one electable candidate.
type Option struct {
	ID    int64
	Label string
}

// Config describes one timed vote. Weights defaults to 1 per voter, Bonus
// seeds the tally before any ballot lands (raven-style curse votes).
type Config struct {
	Title           string
	Description     string
	Options         []Option
	Voters          []int64
	Weights         map[int64]int
	Bonus           map[int64]int
	Duration        time.Duration
	AllowSkip       bool
	EndWhenAllVoted bool
	Tick            time.Duration
	Observer        func(msg string)
}

// Result is the outcome of a finished session. WinnerID is zero when Tie.
type Result struct {
	Tally    map[int64]int
	WinnerID int64
	Tie      bool
	Ballots  int
}

type ballot struct {
	voter  int64
	target int64
	skip   bool
}

// Session collects weighted ballots over a channel until the deadline. A
// voter may re-cast any time before the end; the last ballot wins.
type Session struct {
	cfg      Config
	voters   map[int64]bool
	options  map[int64]string
	ballots  chan ballot
	done     chan struct{}
}

func New(cfg Config) *Session {
	if cfg.Duration <= 0 {
		cfg.Duration = consts.DefaultVoteTimeout
	}
	if cfg.Tick <= 0 {
		cfg.Tick = consts.VoteTickInterval
	}
	s := &Session{
		cfg:     cfg,
		voters:  map[int64]bool{},
		options: map[int64]string{},
		ballots: make(chan ballot, 64),
		done:    make(chan struct{}),
	}
	for _, id := range cfg.Voters {
		s.voters[id] = true
	}
	for _, opt := range cfg.Options {
		s.options[opt.ID] = opt.Label
	}
	return s
}

// Cast records a ballot for target. It never blocks the caller for long and
// reports ErrorsVoteClosed once the session has ended.
func (s *Session) Cast(voter, target int64) error {
	return s.cast(ballot{voter: voter, target: target})
}

// CastSkip records an explicit abstention.
func (s *Session) CastSkip(voter int64) error {
	return s.cast(ballot{voter: voter, skip: true})
}

func (s *Session) cast(b ballot) error {
	select {
	case <-s.done:
		return consts.ErrorsVoteClosed
	default:
	}
	select {
	case <-s.done:
		return consts.ErrorsVoteClosed
	case s.ballots <- b:
		return nil
	}
}

// Run drives the session to completion and returns the result. It returns
// early when the context is cancelled or, if configured, when every eligible
// voter has cast a ballot.
func (s *Session) Run(ctx context.Context) Result {
	defer close(s.done)
	s.observe(s.header())

	votes := map[int64]ballot{}
	deadline := time.NewTimer(s.cfg.Duration)
	defer deadline.Stop()
	tick := time.NewTicker(s.cfg.Tick)
	defer tick.Stop()
	endAt := time.Now().Add(s.cfg.Duration)

	for {
		select {
		case b := <-s.ballots:
			if !s.voters[b.voter] {
				log.Infof("vote %s: dropped ballot from ineligible voter %d\n", s.cfg.Title, b.voter)
				continue
			}
			if b.skip && !s.cfg.AllowSkip {
				log.Infof("vote %s: dropped skip from %d, skipping disabled\n", s.cfg.Title, b.voter)
				continue
			}
			if !b.skip {
				if _, ok := s.options[b.target]; !ok {
					log.Infof("vote %s: dropped ballot from %d for unknown target %d\n", s.cfg.Title, b.voter, b.target)
					continue
				}
			}
			votes[b.voter] = b
			s.observe(s.tallyText(votes, time.Until(endAt)))
			if s.cfg.EndWhenAllVoted && len(votes) == len(s.voters) {
				return s.result(votes)
			}
		case <-tick.C:
			s.observe(s.tallyText(votes, time.Until(endAt)))
		case <-deadline.C:
			return s.result(votes)
		case <-ctx.Done():
			return s.result(votes)
		}
	}
}

func (s *Session) result(votes map[int64]ballot) Result {
	tally := map[int64]int{}
	for id, bonus := range s.cfg.Bonus {
		if _, ok := s.options[id]; ok && bonus > 0 {
			tally[id] += bonus
		}
	}
	for voter, b := range votes {
		if b.skip {
			continue
		}
		tally[b.target] += s.weight(voter)
	}
	res := Result{Tally: tally, Ballots: len(votes)}
	max := 0
	for id, count := range tally {
		if count > max {
			max = count
			res.WinnerID = id
			res.Tie = false
		} else if count == max && count > 0 {
			res.Tie = true
			res.WinnerID = 0
		}
	}
	if max == 0 {
		res.Tie = true
		res.WinnerID = 0
	}
	return res
}

func (s *Session) weight(voter int64) int {
	if w, ok := s.cfg.Weights[voter]; ok && w > 0 {
		return w
	}
	return 1
}

func (s *Session) header() string {
	buf := bytes.Buffer{}
	buf.WriteString(fmt.Sprintf("%s (%ds)\n", s.cfg.Title, int(s.cfg.Duration.Seconds())))
	if s.cfg.Description != "" {
		buf.WriteString(s.cfg.Description + "\n")
	}
	for _, opt := range s.cfg.Options {
		buf.WriteString(fmt.Sprintf("%d. %s\n", opt.ID, opt.Label))
	}
	if s.cfg.AllowSkip {
		buf.WriteString("You may abstain.\n")
	}
	return buf.String()
}

func (s *Session) tallyText(votes map[int64]ballot, left time.Duration) string {
	counts := map[int64]int{}
	for voter, b := range votes {
		if !b.skip {
			counts[b.target] += s.weight(voter)
		}
	}
	type line struct {
		label string
		count int
	}
	lines := make([]line, 0, len(s.cfg.Options))
	for _, opt := range s.cfg.Options {
		lines = append(lines, line{label: opt.Label, count: counts[opt.ID]})
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].count > lines[j].count })
	buf := bytes.Buffer{}
	buf.WriteString(fmt.Sprintf("%s: %d/%d voted, %ds left\n", s.cfg.Title, len(votes), len(s.voters), int(left.Seconds())))
	for _, l := range lines {
		buf.WriteString(fmt.Sprintf("%-20s %d\n", l.label, l.count))
	}
	return buf.String()
}

func (s *Session) observe(msg string) {
	if s.cfg.Observer != nil {
		s.cfg.Observer(msg)
	}
}
