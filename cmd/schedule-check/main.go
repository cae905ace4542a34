package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-schedule-api/internal/dto"
	"github.com/noah-isme/gym-schedule-api/internal/models"
	"github.com/noah-isme/gym-schedule-api/internal/service"
	"github.com/noah-isme/gym-schedule-api/pkg/client"
	"github.com/noah-isme/gym-schedule-api/pkg/config"
	"github.com/noah-isme/gym-schedule-api/pkg/logger"
)

const usage = `commands:
  trainer <id>             set the trainer
  pattern <text>           set the weekly pattern, e.g. "Mon: 19:00-21:00, Wed: 19:00-21:00"
  range <start> <end>      set the active range (YYYY-MM-DD)
  exclude <assignment-id>  ignore an assignment being edited
  cancel                   drop the pending check
  status                   print the current result
  submit                   report whether the draft may be saved
  quit`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var (
		baseURL string
		token   string
		trainer string
	)
	flag.StringVar(&baseURL, "api", fmt.Sprintf("http://localhost:%d%s", cfg.Port, cfg.APIPrefix), "API base URL including prefix")
	flag.StringVar(&token, "token", os.Getenv("SCHEDULE_API_TOKEN"), "Bearer token; minted from JWT_SECRET when empty")
	flag.StringVar(&trainer, "trainer", "", "Initial trainer id")
	flag.Parse()

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if token == "" {
		tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer, Expiry: cfg.JWT.Expiration})
		token, err = tokens.IssueToken("schedule-check", models.RoleTrainer, "schedule-check")
		if err != nil {
			logr.Fatal("failed to mint token", zap.Error(err))
		}
	}

	checker := client.NewConflictClient(baseURL, token, nil)
	out := os.Stdout
	controller := service.NewConflictValidationController(checker, service.ControllerConfig{
		Debounce:     cfg.Scheduling.DebounceWindow,
		CheckTimeout: cfg.Scheduling.CheckTimeout,
		OnChange:     func(r service.ValidationResult) { printResult(out, r) },
		Logger:       logr,
	})
	defer controller.Close()

	session := &editSession{draft: dto.ConflictCheckRequest{TrainerID: trainer}, controller: controller, out: out}
	fmt.Fprintln(out, usage)
	session.run(os.Stdin)
}

type editSession struct {
	draft      dto.ConflictCheckRequest
	controller *service.ConflictValidationController
	out        io.Writer
}

func (s *editSession) run(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		command, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)
		switch strings.ToLower(command) {
		case "trainer":
			s.draft.TrainerID = rest
			s.edit()
		case "pattern":
			s.draft.ScheduleText = rest
			s.draft.Slots = nil
			s.edit()
		case "range":
			fields := strings.Fields(rest)
			if len(fields) != 2 {
				fmt.Fprintln(s.out, "usage: range <start> <end>")
				continue
			}
			s.draft.StartDate, s.draft.EndDate = fields[0], fields[1]
			s.edit()
		case "exclude":
			s.draft.ExcludeAssignmentID = rest
			s.edit()
		case "cancel":
			s.controller.Cancel()
		case "status":
			printResult(s.out, s.controller.Current())
		case "submit":
			current := s.controller.Current()
			if current.BlocksSubmission() {
				fmt.Fprintf(s.out, "blocked: draft is %s\n", current.State)
				continue
			}
			fmt.Fprintln(s.out, "ok: no trainer conflicts")
		case "quit", "exit":
			return
		default:
			fmt.Fprintln(s.out, usage)
		}
	}
}

func (s *editSession) edit() {
	s.controller.Edit(s.draft)
}

func printResult(w io.Writer, r service.ValidationResult) {
	switch r.State {
	case service.ValidationConflict:
		fmt.Fprintf(w, "[%d] conflict\n%s\n", r.Generation, r.Details)
	case service.ValidationUnverifiable, service.ValidationInvalid:
		fmt.Fprintf(w, "[%d] %s: %s\n", r.Generation, r.State, r.Details)
	default:
		fmt.Fprintf(w, "[%d] %s\n", r.Generation, r.State)
	}
}
