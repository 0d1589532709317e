package main

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/fatih/color"

	"github.com/parkbj12/songil-ai/internal/contact"
	"github.com/parkbj12/songil-ai/internal/healthcheck"
	notifentity "github.com/parkbj12/songil-ai/internal/notification/entity"
	"github.com/parkbj12/songil-ai/internal/remote"
	"github.com/parkbj12/songil-ai/internal/status"
	"github.com/parkbj12/songil-ai/internal/user"
	userentity "github.com/parkbj12/songil-ai/internal/user/entity"
)

var (
	cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

// terminalPresenter prints surfaced notifications and reminders.
type terminalPresenter struct {
	mu sync.Mutex
}

func newTerminalPresenter() *terminalPresenter { return &terminalPresenter{} }

func (p *terminalPresenter) Show(n notifentity.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Printf("\n%s %s\n", yellow("● Health check-in:"), n.Message)
	fmt.Printf("  %s\n", gray("reply with `chat` to let your contacts know you're ok"))
}

func (p *terminalPresenter) Hide() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Printf("%s\n", gray("check-in answered"))
}

func (p *terminalPresenter) Remind(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Printf("\n%s %s\n", cyan("⏰"), msg)
}

func heartRateText(bpm float64) string {
	switch status.ClassifyHeartRate(bpm) {
	case status.HeartRateLow:
		return yellow("low")
	case status.HeartRateHigh:
		return red("high")
	default:
		return green("normal")
	}
}

func stepsText(steps float64) string {
	switch status.ClassifySteps(steps) {
	case status.StepsInsufficient:
		return red("insufficient")
	case status.StepsModerate:
		return yellow("moderate")
	default:
		return green("good")
	}
}

func anomalyText(a status.Anomaly) string {
	switch a {
	case status.AnomalyAnomalous:
		return red("anomalous")
	case status.AnomalyCaution:
		return yellow("caution")
	default:
		return green("normal")
	}
}

func gradeText(score int) string {
	s := fmt.Sprintf("%d", score)
	switch status.GradeScore(score) {
	case status.GradeGood:
		return green(s)
	case status.GradeFair:
		return yellow(s)
	default:
		return red(s)
	}
}

func reasonText(r userentity.Reason) string {
	switch r {
	case userentity.ReasonCharset:
		return "only letters, digits, '_' and '-' are allowed"
	case userentity.ReasonLength:
		return fmt.Sprintf("at least %d characters", user.MinLength)
	case userentity.ReasonNone:
		return "empty"
	default:
		return string(r)
	}
}

// describe turns an error into the line shown to the user.
func describe(err error) string {
	var he *remote.HTTPError
	switch {
	case errors.Is(err, user.ErrSessionNotValid):
		return "no validated user id; pass --user or run `healthdash validate ID`"
	case errors.Is(err, contact.ErrNoContacts):
		return "no emergency contacts registered; add one with `healthdash contacts add`"
	case errors.Is(err, healthcheck.ErrNotSaved):
		return fmt.Sprintf("analysis finished but could not be saved: %v", err)
	case errors.As(err, &he) && he.Status == http.StatusNotFound:
		return fmt.Sprintf("not found: %v", err)
	case remote.IsNetwork(err):
		return fmt.Sprintf("cannot reach the server: %v", err)
	default:
		return err.Error()
	}
}
